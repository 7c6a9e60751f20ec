package boiledrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/user"
)

var userOrderings = allowedFields("name", "email", "createdAt", "lastSeen")

type userRow struct {
	ID        string    `db:"id" boil:"id"`
	TenantID  string    `db:"tenant_id" boil:"tenant_id"`
	Name      string    `db:"name" boil:"name"`
	Email     string    `db:"email" boil:"email"`
	Phone     string    `db:"phone" boil:"phone"`
	Roles     string    `db:"roles" boil:"roles"`
	IsActive  bool      `db:"is_active" boil:"is_active"`
	CreatedAt time.Time `db:"created_at" boil:"created_at"`
	UpdatedAt time.Time `db:"updated_at" boil:"updated_at"`
	LastSeen  null.Time `db:"last_seen" boil:"last_seen"`
}

func boilUser(u user.User) userRow {
	return userRow{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Roles:     strings.Join(u.Roles, ","),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
		LastSeen:  null.NewTime(u.LastSeen.UTC(), !u.LastSeen.IsZero()),
	}
}

func (r userRow) unboil() user.User {
	var roles []string
	if r.Roles != "" {
		roles = strings.Split(r.Roles, ",")
	}
	u := user.User{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Roles:     roles,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.LastSeen.Valid {
		u.LastSeen = r.LastSeen.Time.UTC()
	}
	return u
}

type UserRepository struct {
	base
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(exec core.DBExecutor) *UserRepository {
	return &UserRepository{base{exec: exec}}
}

func (repo UserRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO users (id, tenant_id, name, email, phone, roles, is_active, created_at, updated_at, last_seen)
		VALUES (:id, :tenant_id, :name, :email, :phone, :roles, :is_active, :created_at, :updated_at, :last_seen)`,
		boilUser(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo UserRepository) GetUser(ctx context.Context, tenantID, id string) (user.User, error) {
	var row userRow
	if err := repo.get(ctx, &row, "SELECT * FROM users WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "getting user")
	}
	return row.unboil(), nil
}

func (repo UserRepository) QueryUsers(ctx context.Context, tenantID string, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	list := mods(qm.From("users"), qm.Where("tenant_id = ?", tenantID))

	if filter != nil {
		if filter.Search != "" {
			list = append(list, search(filter.Search, "name", "email", "phone"))
		}
		// users with any role starting with any of the given ones
		if len(filter.Roles) > 0 {
			roleMods := make([]qm.QueryMod, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleMods = append(roleMods, qm.Or2(qm.Where("(',' || roles) LIKE ?", "%,"+role+"%")))
			}
			list = append(list, qm.Expr(roleMods...))
		}
		if filter.IsActive != nil {
			list = append(list, qm.Where("is_active = ?", *filter.IsActive))
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	list = append(list, mods(orderBy(ordering, userOrderings))...)

	var rows []userRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	res := make([]user.User, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo UserRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE users SET name = :name, email = :email, phone = :phone, roles = :roles,
			is_active = :is_active, updated_at = :updated_at, last_seen = :last_seen
		WHERE tenant_id = :tenant_id AND id = :id`, boilUser(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
