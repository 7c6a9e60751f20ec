package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/user"
)

type userApi struct {
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerUserAPI(admin *echo.Group, svc user.ServiceInterface, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	ug := admin.Group("/users")
	ug.GET("", api.query)
	ug.GET("/roles", api.queryRoles)

	// only managers and owners manage staff
	dg := ug.Group("/:id", adminMiddleware(user.RoleAdminManager, user.RoleAdminOwner))
	dg.PUT("/roles", api.setRoles)
	dg.PUT("/active", api.setActive)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var err error
	if filter.IsActive, err = queryBool(ctx, "is_active"); err != nil {
		return err
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// target returns the context user (the actor) and the User of the `id` param.
func (api *userApi) target(ctx echo.Context) (actor, usr user.User, err error) {
	if actor, err = getContextUser(ctx); err != nil {
		return
	}
	usr, err = api.svc.GetByID(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	err = errors.Wrap(err, "getting user")
	return
}

func (api *userApi) setRoles(ctx echo.Context) error {
	actor, usr, err := api.target(ctx)
	if err != nil {
		return err
	}

	var data user.SetRoles
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetRoles")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr, err = api.svc.SetRoles(ctx.Request().Context(), actor, usr, data.Roles)
	if err != nil {
		return errors.Wrap(err, "setting user roles")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setActive(ctx echo.Context) error {
	actor, usr, err := api.target(ctx)
	if err != nil {
		return err
	}

	var data user.SetActive
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetActive")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr, err = api.svc.SetActive(ctx.Request().Context(), actor, usr, *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "setting user status")
	}
	return ctx.JSON(http.StatusOK, usr)
}
