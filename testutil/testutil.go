// Package testutil holds helpers shared by the tests of the repository packages, the API and the CLI.
package testutil

import (
	"context"
	"net/mail"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/storage/database"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
)

const SigningKey = "test-signing-key"

// Config returns a test configuration using an in-memory sqlite database.
func Config() *core.Config {
	return &core.Config{
		Debug:            false,
		TestMode:         true,
		AppName:          "Edvise",
		Env:              "TEST",
		Build:            "test",
		WorkDir:          core.Getwd(),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Edvise", Address: "noreply@edvise.test"},
		WritingCurrency:  "USD",
		Server: core.ServerConfig{
			BodyLimit:       "2M",
			AuthSigningKey:  SigningKey,
			DisableReqLogs:  true,
			DisableRecovery: true,
		},
		Database: core.DatabaseConfig{
			Engine: core.EngineSQLite,
			Path:   database.MemoryPath,
		},
		ImageHost: core.ImageHostConfig{
			BaseURL:       "http://imagehost.test",
			APIKey:        "test",
			MaxUploadSize: 1 << 20,
		},
		Tenancy: core.TenancyConfig{
			BaseDomain: "edvise.test",
			Header:     "X-Tenant",
		},
	}
}

// PrepareDB opens a migrated in-memory database, closed when t ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(Config())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func CreateTenant(t *testing.T, db core.DBExecutor, slug string) tenant.Tenant {
	t.Helper()
	now := core.NowFunc()
	tnt, err := boiledrepos.NewTenantRepository(db).CreateTenant(context.Background(), tenant.Tenant{
		ID:           uuid.New().String(),
		Slug:         slug,
		Name:         slug,
		ContactEmail: "contact@" + slug + ".test",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return tnt
}

func CreateUser(t *testing.T, db core.DBExecutor, tenantID, name string, roles ...string) user.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{user.RoleCustomer}
	}
	now := core.NowFunc()
	usr, err := boiledrepos.NewUserRepository(db).CreateUser(context.Background(), user.User{
		ID:        "auth|" + uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Email:     name + "@example.com",
		Roles:     roles,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastSeen:  now,
	})
	require.NoError(t, err)
	return usr
}
