package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
)

type fakeRepo struct {
	Repository
	tenants []Tenant
}

func (r *fakeRepo) GetTenant(_ context.Context, filter GetFilter) (Tenant, error) {
	for _, t := range r.tenants {
		switch {
		case filter.ID != "" && t.ID == filter.ID,
			filter.Slug != "" && t.Slug == filter.Slug,
			filter.Domain != "" && t.Domain == filter.Domain:
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func TestService_Resolve(t *testing.T) {
	repo := &fakeRepo{tenants: []Tenant{
		{ID: "1", Slug: "acme", Domain: "prep.acme.test", IsActive: true},
		{ID: "2", Slug: "bright", IsActive: true},
		{ID: "3", Slug: "closed", IsActive: false},
		{ID: "4", Slug: "main", IsActive: true},
	}}
	conf := &core.Config{Tenancy: core.TenancyConfig{BaseDomain: "Edvise.test"}}

	tests := []struct {
		name    string
		host    string
		slug    string
		dflt    string
		wantID  string
		wantErr error
	}{
		{name: "header wins", host: "prep.acme.test", slug: " Bright ", wantID: "2"},
		{name: "custom domain", host: "PREP.acme.test:443", wantID: "1"},
		{name: "subdomain", host: "bright.edvise.test", wantID: "2"},
		{name: "nested subdomain", host: "api.acme.edvise.test", wantID: "1"},
		{name: "unknown header slug does not fall back", slug: "nope", dflt: "main", wantErr: ErrNotFound},
		{name: "unknown subdomain falls back to default", host: "nope.edvise.test", dflt: "main", wantID: "4"},
		{name: "foreign host without default", host: "example.com", wantErr: ErrNotFound},
		{name: "inactive tenant", host: "closed.edvise.test", wantErr: ErrNotFound},
		{name: "base domain alone", host: "edvise.test", dflt: "main", wantID: "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Tenancy.DefaultTenant = tt.dflt
			svc := NewService(repo, conf)

			got, err := svc.Resolve(context.Background(), tt.host, tt.slug)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
