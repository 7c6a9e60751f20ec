package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
)

// tenantMiddleware resolves the tenant of the request from the tenant header, then the Host.
func tenantMiddleware(svc tenant.ServiceInterface, header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			var slug string
			if header != "" {
				slug = req.Header.Get(header)
			}
			tnt, err := svc.Resolve(req.Context(), req.Host, slug)
			if err != nil {
				if errors.Cause(err) == tenant.ErrNotFound {
					return errTenantNotFound
				}
				return errors.Wrap(err, "resolving tenant")
			}
			ctx.Set(contextTenantKey, tnt)
			return next(ctx)
		}
	}
}

// userMiddleware syncs the authenticated identity to a local User of the tenant.
// It must run after the JWT middleware.
func userMiddleware(svc user.ServiceInterface, issuer string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, true) {
				return errInvalidIssuer
			}
			tnt := getContextTenant(ctx)
			if claims.Tenant != "" && claims.Tenant != tnt.Slug {
				return errWrongTenant
			}

			usr, err := svc.Sync(ctx.Request().Context(), tnt.ID, claims.identity())
			if err != nil {
				if errors.Cause(err) == user.ErrAccountInactive {
					return errAccountDeactivated
				}
				return errors.Wrap(err, "syncing user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// adminMiddleware only lets admins through; when roles are given, the admin needs one of them.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.IsAdmin() && (len(roles) == 0 || usr.HasAnyRole(roles...)) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
