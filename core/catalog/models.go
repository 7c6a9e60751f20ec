package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/testtype"
)

// Delivery modes
const (
	ModeOnline   = "online"
	ModeInPerson = "in_person"
	ModeHybrid   = "hybrid"
)

var Modes = []string{ModeOnline, ModeInPerson, ModeHybrid}

type Course struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"-"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	TestType      string    `json:"test_type"`
	Level         string    `json:"level"`
	Mode          string    `json:"mode"`
	DurationWeeks int       `json:"duration_weeks"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	ImageURL      string    `json:"image_url"`
	IsPublished   bool      `json:"is_published"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// CourseData contains the information needed to create or replace a Course.
type CourseData struct {
	Slug          string `json:"slug" yaml:"slug" validate:"omitempty,max=80,slug"`
	Title         string `json:"title" yaml:"title" validate:"required,max=160"`
	Summary       string `json:"summary" yaml:"summary" validate:"max=400"`
	Description   string `json:"description" yaml:"description"`
	TestType      string `json:"test_type" yaml:"test_type" validate:"required,testtype"`
	Level         string `json:"level" yaml:"level" validate:"max=40"`
	Mode          string `json:"mode" yaml:"mode" validate:"required,coursemode"`
	DurationWeeks int    `json:"duration_weeks" yaml:"duration_weeks" validate:"gte=0,lte=104"`
	PriceCents    int64  `json:"price_cents" yaml:"price_cents" validate:"gte=0"`
	Currency      string `json:"currency" yaml:"currency" validate:"required,iso4217"`
	ImageURL      string `json:"image_url" yaml:"image_url" validate:"omitempty,url"`
	IsPublished   bool   `json:"is_published" yaml:"is_published"`
	SortOrder     int    `json:"sort_order" yaml:"sort_order"`
}

func (cd *CourseData) Validate(validate *validator.Validate) error {
	cd.Title = core.CleanString(cd.Title)
	cd.Slug = core.CleanString(cd.Slug, true /* lower */)
	if cd.Slug == "" {
		cd.Slug = core.Slugify(cd.Title)
	}
	cd.Summary = core.CleanString(cd.Summary)
	cd.Level = core.CleanString(cd.Level, true /* lower */)
	cd.Mode = core.CleanString(cd.Mode, true /* lower */)
	cd.Currency = core.CleanCurrency(cd.Currency)

	if err := validate.Struct(cd); err != nil {
		return err
	}
	cd.TestType, _ = testtype.Normalize(cd.TestType)
	return nil
}

type SetPublished struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

type QueryFilter struct {
	Search    string `query:"search"`
	TestType  string `query:"test_type"`
	Level     string `query:"level"`
	Mode      string `query:"mode"`
	Published *bool  `query:"-"` // nil: all (admins)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.TestType != "" {
		if key, ok := testtype.Normalize(qf.TestType); ok {
			qf.TestType = key
		}
	}
	qf.Level = core.CleanString(qf.Level, true /* lower */)
	qf.Mode = core.CleanString(qf.Mode, true /* lower */)
}
