package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrRoleTooHigh     = errors.New("not enough rights to set these roles")
	ErrSelfDemotion    = errors.New("you cannot change your own roles or status")
	ErrAccountInactive = errors.New("account deactivated")
)

// lastSeenResolution avoids a write on every authenticated request.
const lastSeenResolution = 5 * time.Minute

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, tenantID, id string) (User, error)
		QueryUsers(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	ServiceInterface interface {
		Sync(ctx context.Context, tenantID string, ident Identity) (User, error)
		GetByID(ctx context.Context, tenantID, id string) (User, error)
		Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		SetRoles(ctx context.Context, actor, usr User, roles []string) (User, error)
		SetActive(ctx context.Context, actor, usr User, active bool) (User, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Sync creates or refreshes the local User of an authenticated identity.
// Roles from the identity are only honored on creation; the back-office owns them afterwards.
func (svc *Service) Sync(ctx context.Context, tenantID string, ident Identity) (User, error) {
	now := core.NowFunc()
	name := core.CleanString(ident.Name)
	email := core.CleanString(ident.Email, true /* lower */)
	phone := core.CleanString(ident.Phone)

	usr, err := svc.repo.GetUser(ctx, tenantID, ident.Subject)
	if errors.Cause(err) == ErrNotFound {
		roles := make([]string, 0, len(ident.Roles))
		for _, r := range ident.Roles {
			if IsValidRole(r) {
				roles = append(roles, r)
			}
		}
		if len(roles) == 0 {
			roles = []string{RoleCustomer}
		}
		usr, err = svc.repo.CreateUser(ctx, User{
			ID:        ident.Subject,
			TenantID:  tenantID,
			Name:      name,
			Email:     email,
			Phone:     phone,
			Roles:     roles,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
			LastSeen:  now,
		})
		return usr, errors.Wrap(err, "creating user")
	} else if err != nil {
		return User{}, errors.Wrap(err, "getting user")
	}

	changed := false
	if name != "" && name != usr.Name {
		usr.Name, changed = name, true
	}
	if email != "" && email != usr.Email {
		usr.Email, changed = email, true
	}
	if phone != "" && phone != usr.Phone {
		usr.Phone, changed = phone, true
	}
	if changed {
		usr.UpdatedAt = now
	}
	if !changed && now.Sub(usr.LastSeen) < lastSeenResolution {
		return usr, nil
	}
	usr.LastSeen = now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

func (svc *Service) GetByID(ctx context.Context, tenantID, id string) (User, error) {
	return svc.repo.GetUser(ctx, tenantID, id)
}

func (svc *Service) Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, tenantID, filter, ordering)
}

// SetRoles replaces usr's roles. actor cannot grant a role above their own, nor touch a User ranking above them.
func (svc *Service) SetRoles(ctx context.Context, actor, usr User, roles []string) (User, error) {
	if err := svc.checkActor(actor, usr); err != nil {
		return User{}, err
	}
	if MaxRolePriority(roles) > MaxRolePriority(actor.Roles) {
		return User{}, core.NewFieldError("roles", ErrRoleTooHigh)
	}
	usr.Roles = roles
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetActive(ctx context.Context, actor, usr User, active bool) (User, error) {
	if err := svc.checkActor(actor, usr); err != nil {
		return User{}, err
	}
	usr.IsActive = active
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) checkActor(actor, usr User) error {
	if actor.ID == usr.ID {
		return core.NewValidationError(ErrSelfDemotion)
	}
	if MaxRolePriority(usr.Roles) > MaxRolePriority(actor.Roles) {
		return core.NewFieldError("roles", ErrRoleTooHigh)
	}
	return nil
}
