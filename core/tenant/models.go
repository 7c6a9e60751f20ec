package tenant

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
)

// Tenant is one consultancy brand served by the application.
type Tenant struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain,omitempty"`
	ContactEmail string    `json:"contact_email"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewTenant contains information needed to create a new Tenant.
type NewTenant struct {
	Slug         string `json:"slug" yaml:"slug" validate:"required,max=63,slug"`
	Name         string `json:"name" yaml:"name" validate:"required,max=120"`
	Domain       string `json:"domain" yaml:"domain" validate:"omitempty,fqdn"`
	ContactEmail string `json:"contact_email" yaml:"contact_email" validate:"omitempty,email"`
}

func (nt *NewTenant) Validate(validate *validator.Validate) error {
	nt.Slug = core.CleanString(nt.Slug, true /* lower */)
	nt.Name = core.CleanString(nt.Name)
	nt.Domain = core.CleanString(nt.Domain, true /* lower */)
	nt.ContactEmail = core.CleanString(nt.ContactEmail, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTenant defines what information may be provided to modify an existing Tenant.
type UpdateTenant struct {
	Name         string `json:"name" validate:"omitempty,max=120"`
	Domain       string `json:"domain" validate:"omitempty,fqdn"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	IsActive     *bool  `json:"is_active"`
}

func (ut *UpdateTenant) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Domain = core.CleanString(ut.Domain, true /* lower */)
	ut.ContactEmail = core.CleanString(ut.ContactEmail, true /* lower */)
	return validate.Struct(ut)
}
