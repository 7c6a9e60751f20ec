package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusVerified, StatusRejected}

// Subject types
const (
	SubjectReservation  = "reservation"
	SubjectWritingOrder = "writing_order"
)

var SubjectTypes = []string{SubjectReservation, SubjectWritingOrder}

// Proof is a payment receipt image attached to a reservation or a writing order.
type Proof struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"-"`
	UserID      string    `json:"user_id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	ImageURL    string    `json:"image_url"`
	DisplayURL  string    `json:"display_url,omitempty"`
	DeleteURL   string    `json:"-"`
	ThumbURL    string    `json:"thumb_url,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Fingerprint string    `json:"fingerprint"`
	Status      Status    `json:"status"`
	ReviewNote  string    `json:"review_note,omitempty"`
	ReviewedBy  string    `json:"reviewed_by,omitempty"`
	ReviewedAt  time.Time `json:"reviewed_at,omitempty"` // UTC, zero until reviewed
	CreatedAt   time.Time `json:"created_at"`            // UTC
}

// Subject identifies what a proof pays for.
type Subject struct {
	Type string `json:"subject_type" query:"subject_type" form:"subject_type" validate:"required,proofsubject"`
	ID   string `json:"subject_id" query:"subject_id" form:"subject_id" validate:"required,max=64"`
}

func (s *Subject) Validate(validate *validator.Validate) error {
	s.Type = core.CleanString(s.Type, true /* lower */)
	s.ID = core.CleanString(s.ID)
	return validate.Struct(s)
}

// UploadedImage is what the image host returns for an upload.
type UploadedImage struct {
	URL        string
	DisplayURL string
	DeleteURL  string
	ThumbURL   string
}

type Review struct {
	Status Status `json:"status" validate:"required,oneof=verified rejected"`
	Note   string `json:"note" validate:"max=1000"`
}

func (r *Review) Validate(validate *validator.Validate) error {
	r.Note = core.CleanString(r.Note)
	return validate.Struct(r)
}

type QueryFilter struct {
	Status      Status `query:"status"`
	SubjectType string `query:"subject_type"`
	SubjectID   string `query:"subject_id"`
	UserID      string `query:"-"`
}
