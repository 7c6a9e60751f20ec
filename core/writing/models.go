package writing

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusRevision   Status = "revision"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusRevision, StatusDelivered, StatusCancelled}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Service types
const (
	ServiceEssay         = "essay"
	ServiceSOP           = "sop"
	ServiceLOR           = "lor"
	ServiceCV            = "cv"
	ServiceResearchPaper = "research_paper"
	ServiceEditing       = "editing"
)

// Academic levels
const (
	LevelHighSchool    = "high_school"
	LevelUndergraduate = "undergraduate"
	LevelMasters       = "masters"
	LevelPhD           = "phd"
)

var (
	ServiceLabels = map[string]string{
		ServiceEssay:         "Admission essay",
		ServiceSOP:           "Statement of purpose",
		ServiceLOR:           "Letter of recommendation",
		ServiceCV:            "CV / Resume",
		ServiceResearchPaper: "Research paper",
		ServiceEditing:       "Editing & proofreading",
	}

	// basePerPage in minor units
	basePerPage = map[string]int64{
		ServiceEssay:         1500,
		ServiceSOP:           2000,
		ServiceLOR:           1800,
		ServiceCV:            2500,
		ServiceResearchPaper: 2200,
		ServiceEditing:       800,
	}

	// levelMultiplier in percent
	levelMultiplier = map[string]int64{
		LevelHighSchool:    100,
		LevelUndergraduate: 115,
		LevelMasters:       135,
		LevelPhD:           160,
	}
)

type Order struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"-"`
	Reference     string    `json:"reference"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	ServiceType   string    `json:"service_type"`
	AcademicLevel string    `json:"academic_level"`
	Topic         string    `json:"topic"`
	Instructions  string    `json:"instructions"`
	Pages         int       `json:"pages"`
	Deadline      time.Time `json:"deadline"` // UTC
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        Status    `json:"status"`
	DeliveryURL   string    `json:"delivery_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// EstimateRequest holds what drives the price of an order.
type EstimateRequest struct {
	ServiceType   string    `json:"service_type" validate:"required,writingservice"`
	AcademicLevel string    `json:"academic_level" validate:"required,writinglevel"`
	Pages         int       `json:"pages" validate:"required,min=1,max=200"`
	Deadline      time.Time `json:"deadline" validate:"required"`
}

func (er *EstimateRequest) clean() {
	er.ServiceType = core.CleanString(er.ServiceType, true /* lower */)
	er.AcademicLevel = core.CleanString(er.AcademicLevel, true /* lower */)
	er.Deadline = er.Deadline.UTC()
}

func (er *EstimateRequest) checkDeadline() error {
	if er.Deadline.Sub(core.NowFunc()) < minLeadTime {
		return core.NewFieldError("deadline", ErrDeadlineTooClose)
	}
	return nil
}

func (er *EstimateRequest) Validate(validate *validator.Validate) error {
	er.clean()
	if err := validate.Struct(er); err != nil {
		return err
	}
	return er.checkDeadline()
}

type Estimate struct {
	ServiceType     string `json:"service_type"`
	AcademicLevel   string `json:"academic_level"`
	Pages           int    `json:"pages"`
	PerPageCents    int64  `json:"per_page_cents"`
	UrgencyPercent  int64  `json:"urgency_percent"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	HoursToDeadline int    `json:"hours_to_deadline"`
}

// NewOrder contains information needed to place a writing order.
type NewOrder struct {
	EstimateRequest
	Topic        string `json:"topic" validate:"required,max=200"`
	Instructions string `json:"instructions" validate:"max=5000"`
}

// Validate cleans the embedded EstimateRequest too: validate.Struct dives into it.
func (no *NewOrder) Validate(validate *validator.Validate) error {
	no.EstimateRequest.clean()
	no.Topic = core.CleanString(no.Topic)
	no.Instructions = core.CleanString(no.Instructions)
	if err := validate.Struct(no); err != nil {
		return err
	}
	return no.checkDeadline()
}

type UpdateStatus struct {
	Status      Status `json:"status" validate:"required,orderstatus"`
	DeliveryURL string `json:"delivery_url" validate:"omitempty,url"`
}

type QueryFilter struct {
	Search      string   `query:"search"`
	Statuses    []Status `query:"status"`
	ServiceType string   `query:"service_type"`
	UserID      string   `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ServiceType = core.CleanString(qf.ServiceType, true /* lower */)
}
