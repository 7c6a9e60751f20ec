package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/writing"
)

type writingApi struct {
	svc      writing.ServiceInterface
	validate *validator.Validate
}

func registerWritingAPI(
	g, admin *echo.Group,
	auth []echo.MiddlewareFunc,
	svc writing.ServiceInterface,
	validate *validator.Validate,
) {
	api := writingApi{svc: svc, validate: validate}

	g.POST("/writing/estimate", api.estimate)

	og := g.Group("/writing/orders", auth...)
	og.GET("", api.queryMine)
	og.POST("", api.create)
	og.GET("/:id", api.retrieveMine)
	og.POST("/:id/cancel", api.cancel)

	ag := admin.Group("/writing/orders")
	ag.GET("", api.query)
	ag.PUT("/:id/status", api.updateStatus)
}

func (api *writingApi) estimate(ctx echo.Context) error {
	var data writing.EstimateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EstimateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Estimate(data))
}

func (api *writingApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data writing.NewOrder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOrder")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	customer := writing.Customer{UserID: usr.ID, Name: usr.Name, Email: usr.Email}
	o, err := api.svc.Create(ctx.Request().Context(), getContextTenant(ctx).ID, customer, data)
	if err != nil {
		return errors.Wrap(err, "creating writing order")
	}
	return ctx.JSON(http.StatusCreated, o)
}

func (api *writingApi) queryMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	orders, err := api.svc.QueryMine(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying writing orders")
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *writingApi) getMine(ctx echo.Context) (writing.Order, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return writing.Order{}, err
	}
	o, err := api.svc.GetMine(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID, ctx.Param("id"))
	return o, errors.Wrap(err, "getting writing order")
}

func (api *writingApi) retrieveMine(ctx echo.Context) error {
	o, err := api.getMine(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, o)
}

func (api *writingApi) cancel(ctx echo.Context) error {
	o, err := api.getMine(ctx)
	if err != nil {
		return err
	}
	o, err = api.svc.Cancel(ctx.Request().Context(), o)
	if err != nil {
		return errors.Wrap(err, "cancelling writing order")
	}
	return ctx.JSON(http.StatusOK, o)
}

// Admin

func (api *writingApi) query(ctx echo.Context) error {
	var filter writing.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	orders, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying writing orders")
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *writingApi) updateStatus(ctx echo.Context) error {
	o, err := api.svc.Get(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting writing order")
	}

	var data writing.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	o, err = api.svc.UpdateStatus(ctx.Request().Context(), o, data)
	if err != nil {
		return errors.Wrap(err, "updating writing order status")
	}
	return ctx.JSON(http.StatusOK, o)
}
