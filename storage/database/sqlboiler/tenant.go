package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/tenant"
)

type tenantRow struct {
	ID           string      `db:"id" boil:"id"`
	Slug         string      `db:"slug" boil:"slug"`
	Name         string      `db:"name" boil:"name"`
	Domain       null.String `db:"domain" boil:"domain"`
	ContactEmail string      `db:"contact_email" boil:"contact_email"`
	IsActive     bool        `db:"is_active" boil:"is_active"`
	CreatedAt    time.Time   `db:"created_at" boil:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" boil:"updated_at"`
}

func boilTenant(t tenant.Tenant) tenantRow {
	return tenantRow{
		ID:           t.ID,
		Slug:         t.Slug,
		Name:         t.Name,
		Domain:       null.NewString(t.Domain, t.Domain != ""),
		ContactEmail: t.ContactEmail,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}

func (r tenantRow) unboil() tenant.Tenant {
	return tenant.Tenant{
		ID:           r.ID,
		Slug:         r.Slug,
		Name:         r.Name,
		Domain:       r.Domain.String,
		ContactEmail: r.ContactEmail,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type TenantRepository struct {
	base
}

var _ tenant.Repository = (*TenantRepository)(nil)

func NewTenantRepository(exec core.DBExecutor) *TenantRepository {
	return &TenantRepository{base{exec: exec}}
}

func (repo TenantRepository) CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO tenants (id, slug, name, domain, contact_email, is_active, created_at, updated_at)
		VALUES (:id, :slug, :name, :domain, :contact_email, :is_active, :created_at, :updated_at)`, boilTenant(t))
	if err != nil {
		return tenant.Tenant{}, trapUnique(err, tenant.ErrSlugExists, "inserting tenant")
	}
	return t, nil
}

func (repo TenantRepository) GetTenant(ctx context.Context, filter tenant.GetFilter) (tenant.Tenant, error) {
	var (
		row tenantRow
		err error
	)
	switch {
	case filter.ID != "":
		err = repo.get(ctx, &row, "SELECT * FROM tenants WHERE id = ?", filter.ID)
	case filter.Slug != "":
		err = repo.get(ctx, &row, "SELECT * FROM tenants WHERE slug = ?", filter.Slug)
	case filter.Domain != "":
		err = repo.get(ctx, &row, "SELECT * FROM tenants WHERE domain = ?", filter.Domain)
	default:
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	if err != nil {
		return tenant.Tenant{}, trapNoRows(err, tenant.ErrNotFound, "getting tenant")
	}
	return row.unboil(), nil
}

func (repo TenantRepository) QueryTenants(ctx context.Context) ([]tenant.Tenant, error) {
	var rows []tenantRow
	if err := repo.exec.SelectContext(ctx, &rows, "SELECT * FROM tenants ORDER BY slug"); err != nil {
		return nil, errors.Wrap(err, "querying tenants")
	}
	res := make([]tenant.Tenant, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo TenantRepository) UpdateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE tenants SET name = :name, domain = :domain, contact_email = :contact_email,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, boilTenant(t))
	if err != nil {
		return tenant.Tenant{}, trapUnique(err, tenant.ErrSlugExists, "updating tenant")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return t, nil
}
