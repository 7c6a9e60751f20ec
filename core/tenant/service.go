package tenant

import (
	"context"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrNotFound   = errors.New("tenant not found")
	ErrSlugExists = errors.New("a tenant with this slug already exists")
)

type (
	Repository interface {
		CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
		GetTenant(ctx context.Context, filter GetFilter) (Tenant, error)
		QueryTenants(ctx context.Context) ([]Tenant, error)
		UpdateTenant(ctx context.Context, t Tenant) (Tenant, error)
	}

	// GetFilter looks a Tenant up by the first non-empty field.
	GetFilter struct {
		ID     string
		Slug   string
		Domain string
	}

	ServiceInterface interface {
		Create(ctx context.Context, nt NewTenant) (Tenant, error)
		GetByID(ctx context.Context, id string) (Tenant, error)
		GetBySlug(ctx context.Context, slug string) (Tenant, error)
		Resolve(ctx context.Context, host, slug string) (Tenant, error)
		Query(ctx context.Context) ([]Tenant, error)
		Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error)
	}

	Service struct {
		repo          Repository
		baseDomain    string
		defaultTenant string
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{
		repo:          repo,
		baseDomain:    strings.ToLower(conf.Tenancy.BaseDomain),
		defaultTenant: conf.Tenancy.DefaultTenant,
	}
}

func (svc *Service) Create(ctx context.Context, nt NewTenant) (Tenant, error) {
	now := core.NowFunc()
	t, err := svc.repo.CreateTenant(ctx, Tenant{
		ID:           uuid.New().String(),
		Slug:         nt.Slug,
		Name:         nt.Name,
		Domain:       nt.Domain,
		ContactEmail: nt.ContactEmail,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Cause(err) == ErrSlugExists {
		return Tenant{}, core.NewFieldError("slug", ErrSlugExists)
	}
	return t, err
}

func (svc *Service) GetByID(ctx context.Context, id string) (Tenant, error) {
	return svc.repo.GetTenant(ctx, GetFilter{ID: id})
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Tenant, error) {
	return svc.repo.GetTenant(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
}

// Resolve finds the active Tenant a request is addressed to.
// Precedence: explicit slug (header), custom domain, subdomain of the base domain, default tenant.
func (svc *Service) Resolve(ctx context.Context, host, slug string) (Tenant, error) {
	t, err := svc.resolve(ctx, host, slug)
	if err != nil {
		return Tenant{}, err
	}
	if !t.IsActive {
		return Tenant{}, ErrNotFound
	}
	return t, nil
}

func (svc *Service) resolve(ctx context.Context, host, slug string) (Tenant, error) {
	if slug = core.CleanString(slug, true /* lower */); slug != "" {
		return svc.repo.GetTenant(ctx, GetFilter{Slug: slug})
	}

	host = strings.ToLower(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host != "" {
		t, err := svc.repo.GetTenant(ctx, GetFilter{Domain: host})
		if err == nil {
			return t, nil
		} else if errors.Cause(err) != ErrNotFound {
			return Tenant{}, err
		}
		if sub := svc.subdomain(host); sub != "" {
			t, err = svc.repo.GetTenant(ctx, GetFilter{Slug: sub})
			if err == nil || errors.Cause(err) != ErrNotFound {
				return t, err
			}
		}
	}

	if svc.defaultTenant != "" {
		return svc.repo.GetTenant(ctx, GetFilter{Slug: svc.defaultTenant})
	}
	return Tenant{}, ErrNotFound
}

// subdomain returns "acme" for "acme.<base domain>" (and "api.acme.<base domain>").
func (svc *Service) subdomain(host string) string {
	if svc.baseDomain == "" || !strings.HasSuffix(host, "."+svc.baseDomain) {
		return ""
	}
	labels := strings.Split(strings.TrimSuffix(host, "."+svc.baseDomain), ".")
	return labels[len(labels)-1]
}

func (svc *Service) Query(ctx context.Context) ([]Tenant, error) {
	return svc.repo.QueryTenants(ctx)
}

func (svc *Service) Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error) {
	if ut.Name != "" {
		t.Name = ut.Name
	}
	if ut.Domain != "" {
		t.Domain = ut.Domain
	}
	if ut.ContactEmail != "" {
		t.ContactEmail = ut.ContactEmail
	}
	if ut.IsActive != nil {
		t.IsActive = *ut.IsActive
	}
	t.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateTenant(ctx, t)
}
