package pricing

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/testtype"
)

// Tier is a price point of a test booking package (e.g. "IELTS - Premium").
type Tier struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"-"`
	TestType    string    `json:"test_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Features    []string  `json:"features"`
	IsPopular   bool      `json:"is_popular"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type TierData struct {
	TestType    string   `json:"test_type" yaml:"test_type" validate:"required,testtype"`
	Name        string   `json:"name" yaml:"name" validate:"required,max=80"`
	Description string   `json:"description" yaml:"description" validate:"max=400"`
	PriceCents  int64    `json:"price_cents" yaml:"price_cents" validate:"gte=0"`
	Currency    string   `json:"currency" yaml:"currency" validate:"required,iso4217"`
	Features    []string `json:"features" yaml:"features" validate:"max=20,dive,required,max=200"`
	IsPopular   bool     `json:"is_popular" yaml:"is_popular"`
	IsActive    *bool    `json:"is_active" yaml:"is_active"` // default: true
	SortOrder   int      `json:"sort_order" yaml:"sort_order"`
}

func (td *TierData) Validate(validate *validator.Validate) error {
	td.Name = core.CleanString(td.Name)
	td.Description = core.CleanString(td.Description)
	td.Currency = core.CleanCurrency(td.Currency)
	features := make([]string, 0, len(td.Features))
	for _, f := range td.Features {
		if f = core.CleanString(f); f != "" {
			features = append(features, f)
		}
	}
	td.Features = features

	if err := validate.Struct(td); err != nil {
		return err
	}
	td.TestType, _ = testtype.Normalize(td.TestType)
	return nil
}

type TierFilter struct {
	TestType string `query:"test_type"`
	Active   *bool  `query:"-"` // nil: all (admins)
}

func (tf *TierFilter) Clean() {
	if tf.TestType != "" {
		if key, ok := testtype.Normalize(tf.TestType); ok {
			tf.TestType = key
		}
	}
}

// Promotion discounts quotes whose booking satisfies Rule (an expr-lang boolean expression
// over RuleEnv). Promotions with a Code only apply when the customer provides it.
type Promotion struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"-"`
	Code       string    `json:"code,omitempty"`
	Name       string    `json:"name"`
	Rule       string    `json:"rule"`
	PercentOff int       `json:"percent_off"`
	IsActive   bool      `json:"is_active"`
	StartsAt   time.Time `json:"starts_at"` // UTC; zero: no lower bound
	EndsAt     time.Time `json:"ends_at"`   // UTC; zero: no upper bound
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Live reports whether p can apply at t.
func (p Promotion) Live(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if !p.StartsAt.IsZero() && t.Before(p.StartsAt) {
		return false
	}
	if !p.EndsAt.IsZero() && !t.Before(p.EndsAt) {
		return false
	}
	return true
}

type PromotionData struct {
	Code       string    `json:"code" yaml:"code" validate:"omitempty,max=32,alphanum"`
	Name       string    `json:"name" yaml:"name" validate:"required,max=120"`
	Rule       string    `json:"rule" yaml:"rule" validate:"omitempty,max=500,promorule"`
	PercentOff int       `json:"percent_off" yaml:"percent_off" validate:"required,min=1,max=100"`
	IsActive   *bool     `json:"is_active" yaml:"is_active"` // default: true
	StartsAt   time.Time `json:"starts_at" yaml:"starts_at"`
	EndsAt     time.Time `json:"ends_at" yaml:"ends_at" validate:"omitempty,gtfield=StartsAt"`
}

func (pd *PromotionData) Validate(validate *validator.Validate) error {
	pd.Code = strings.ToUpper(core.CleanString(pd.Code))
	pd.Name = core.CleanString(pd.Name)
	pd.Rule = core.CleanString(pd.Rule)
	return validate.Struct(pd)
}

type QuoteRequest struct {
	TierID    string `json:"tier_id" validate:"required"`
	Seats     int    `json:"seats" validate:"gte=0,lte=50"` // 0: 1
	PromoCode string `json:"promo_code" validate:"max=32"`
}

func (qr *QuoteRequest) Validate(validate *validator.Validate) error {
	qr.PromoCode = strings.ToUpper(core.CleanString(qr.PromoCode))
	if qr.Seats == 0 {
		qr.Seats = 1
	}
	return validate.Struct(qr)
}

type AppliedPromotion struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	PercentOff int    `json:"percent_off"`
}

type Quote struct {
	TierID        string            `json:"tier_id"`
	TierName      string            `json:"tier_name"`
	TestType      string            `json:"test_type"`
	Currency      string            `json:"currency"`
	UnitCents     int64             `json:"unit_cents"`
	Seats         int               `json:"seats"`
	SubtotalCents int64             `json:"subtotal_cents"`
	DiscountCents int64             `json:"discount_cents"`
	TotalCents    int64             `json:"total_cents"`
	Promotion     *AppliedPromotion `json:"promotion"`
}
