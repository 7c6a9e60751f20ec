package reservation

import "github.com/trezcool/edvise/core/testtype"

// Status of a Reservation. Admins move reservations between any two statuses.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var (
	Statuses = []Status{StatusUpcoming, StatusActive, StatusProcessing, StatusCompleted, StatusCancelled}

	// OpenStatuses still need attention from the back-office.
	OpenStatuses = []Status{StatusUpcoming, StatusActive, StatusProcessing}
)

func (s Status) IsValid() bool {
	_, ok := StatusDetails[s]
	return ok
}

// Modes
const (
	ModeOnline   = "online"
	ModeInPerson = "in_person"
)

const DateFormat = "Mon, 02 Jan 2006 15:04 MST"

// Detail is the display data of a Status.
type Detail struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// StatusDetails maps each Status to what customers and admins see.
var StatusDetails = map[Status]Detail{
	StatusUpcoming: {
		Label:       "Upcoming",
		Description: "Your booking is registered. Upload your payment proof so we can secure your seat.",
		Color:       "blue",
	},
	StatusActive: {
		Label:       "Active",
		Description: "Payment confirmed. Your seat is secured with the test centre.",
		Color:       "green",
	},
	StatusProcessing: {
		Label:       "Processing",
		Description: "The test is done. We are waiting for your results.",
		Color:       "amber",
	},
	StatusCompleted: {
		Label:       "Completed",
		Description: "Your results are out. Thank you for booking with us!",
		Color:       "gray",
	},
	StatusCancelled: {
		Label:       "Cancelled",
		Description: "This booking was cancelled.",
		Color:       "red",
	},
}

// ModeLabels maps each delivery mode to its display label.
var ModeLabels = map[string]string{
	ModeOnline:   "Online (at home)",
	ModeInPerson: "At a test centre",
}

// Meta is every lookup table a booking form or back-office list needs.
type Meta struct {
	Statuses  map[Status]Detail `json:"statuses"`
	Modes     map[string]string `json:"modes"`
	TestTypes []testtype.Type   `json:"test_types"`
}

func GetMeta() Meta {
	return Meta{Statuses: StatusDetails, Modes: ModeLabels, TestTypes: testtype.All()}
}
