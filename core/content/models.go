package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/testtype"
)

type Carousel struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type CarouselData struct {
	Title     string `json:"title" yaml:"title" validate:"required,max=200"`
	Subtitle  string `json:"subtitle" yaml:"subtitle" validate:"max=300"`
	ImageURL  string `json:"image_url" yaml:"image_url" validate:"required,url"`
	LinkURL   string `json:"link_url" yaml:"link_url" validate:"omitempty,url"`
	SortOrder int    `json:"sort_order" yaml:"sort_order" validate:"min=0"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
}

func (d *CarouselData) Validate(validate *validator.Validate) error {
	d.Title = core.CleanString(d.Title)
	d.Subtitle = core.CleanString(d.Subtitle)
	d.ImageURL = core.CleanString(d.ImageURL)
	d.LinkURL = core.CleanString(d.LinkURL)
	return validate.Struct(d)
}

func (c *Carousel) apply(d CarouselData) {
	c.Title = d.Title
	c.Subtitle = d.Subtitle
	c.ImageURL = d.ImageURL
	c.LinkURL = d.LinkURL
	c.SortOrder = d.SortOrder
	c.IsActive = d.IsActive
}

type FAQ struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type FAQData struct {
	Question  string `json:"question" yaml:"question" validate:"required,max=300"`
	Answer    string `json:"answer" yaml:"answer" validate:"required,max=5000"`
	Category  string `json:"category" yaml:"category" validate:"max=60"`
	SortOrder int    `json:"sort_order" yaml:"sort_order" validate:"min=0"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
}

func (d *FAQData) Validate(validate *validator.Validate) error {
	d.Question = core.CleanString(d.Question)
	d.Answer = core.CleanString(d.Answer)
	d.Category = core.CleanString(d.Category, true /* lower */)
	return validate.Struct(d)
}

func (f *FAQ) apply(d FAQData) {
	f.Question = d.Question
	f.Answer = d.Answer
	f.Category = d.Category
	f.SortOrder = d.SortOrder
	f.IsActive = d.IsActive
}

type Testimonial struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"-"`
	AuthorName  string    `json:"author_name"`
	AuthorTitle string    `json:"author_title,omitempty"`
	Quote       string    `json:"quote"`
	Rating      int       `json:"rating"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	TestType    string    `json:"test_type,omitempty"`
	Score       string    `json:"score,omitempty"`
	IsPublished bool      `json:"is_published"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type TestimonialData struct {
	AuthorName  string `json:"author_name" yaml:"author_name" validate:"required,max=120"`
	AuthorTitle string `json:"author_title" yaml:"author_title" validate:"max=120"`
	Quote       string `json:"quote" yaml:"quote" validate:"required,max=2000"`
	Rating      int    `json:"rating" yaml:"rating" validate:"min=1,max=5"`
	AvatarURL   string `json:"avatar_url" yaml:"avatar_url" validate:"omitempty,url"`
	TestType    string `json:"test_type" yaml:"test_type" validate:"omitempty,testtype"`
	Score       string `json:"score" yaml:"score" validate:"max=20"`
	IsPublished bool   `json:"is_published" yaml:"is_published"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order" validate:"min=0"`
}

func (d *TestimonialData) Validate(validate *validator.Validate) error {
	d.AuthorName = core.CleanString(d.AuthorName)
	d.AuthorTitle = core.CleanString(d.AuthorTitle)
	d.Quote = core.CleanString(d.Quote)
	d.AvatarURL = core.CleanString(d.AvatarURL)
	d.Score = core.CleanString(d.Score)
	if err := validate.Struct(d); err != nil {
		return err
	}
	if d.TestType != "" {
		d.TestType, _ = testtype.Normalize(d.TestType)
	}
	return nil
}

func (t *Testimonial) apply(d TestimonialData) {
	t.AuthorName = d.AuthorName
	t.AuthorTitle = d.AuthorTitle
	t.Quote = d.Quote
	t.Rating = d.Rating
	t.AvatarURL = d.AvatarURL
	t.TestType = d.TestType
	t.Score = d.Score
	t.IsPublished = d.IsPublished
	t.SortOrder = d.SortOrder
}

// Reorder lists item IDs in their new display order.
type Reorder struct {
	IDs []string `json:"ids" validate:"required,min=1,unique,dive,required"`
}
