package reservation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/testtype"
)

type Reservation struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"-"`
	Reference   string    `json:"reference"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	TestType    string    `json:"test_type"`
	TierID      string    `json:"tier_id,omitempty"`
	TestDate    time.Time `json:"test_date"` // UTC
	TestCenter  string    `json:"test_center"`
	Mode        string    `json:"mode"`
	Seats       int       `json:"seats"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewReservation contains information needed to book a test.
type NewReservation struct {
	FullName   string    `json:"full_name" validate:"required,max=120"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone" validate:"max=32"`
	TestType   string    `json:"test_type" validate:"required,testtype"`
	TierID     string    `json:"tier_id"`
	TestDate   time.Time `json:"test_date" validate:"required"`
	TestCenter string    `json:"test_center" validate:"max=160"`
	Mode       string    `json:"mode" validate:"required,resmode"`
	Seats      int       `json:"seats" validate:"gte=0,lte=50"` // 0: 1
	PromoCode  string    `json:"promo_code" validate:"max=32"`
	Notes      string    `json:"notes" validate:"max=1000"`
}

func (nr *NewReservation) Validate(validate *validator.Validate) error {
	nr.FullName = core.CleanString(nr.FullName)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Phone = core.CleanString(nr.Phone)
	nr.TierID = core.CleanString(nr.TierID)
	nr.TestCenter = core.CleanString(nr.TestCenter)
	nr.Mode = core.CleanString(nr.Mode, true /* lower */)
	nr.PromoCode = strings.ToUpper(core.CleanString(nr.PromoCode))
	nr.Notes = core.CleanString(nr.Notes)
	if nr.Seats == 0 {
		nr.Seats = 1
	}

	if err := validate.Struct(nr); err != nil {
		return err
	}
	nr.TestType, _ = testtype.Normalize(nr.TestType)
	nr.TestDate = nr.TestDate.UTC()
	if !nr.TestDate.After(core.NowFunc()) {
		return core.NewFieldError("test_date", ErrTestDateInPast)
	}
	return nil
}

type UpdateStatus struct {
	Status Status `json:"status" validate:"required,resstatus"`
}

type QueryFilter struct {
	Search   string    `query:"search"`
	Statuses []Status  `query:"status"`
	TestType string    `query:"test_type"`
	DateFrom time.Time `query:"-"` // bound from date_from
	DateTo   time.Time `query:"-"` // bound from date_to
	UserID   string    `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.TestType != "" {
		if key, ok := testtype.Normalize(qf.TestType); ok {
			qf.TestType = key
		}
	}
}
