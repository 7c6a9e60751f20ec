package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/reservation"
)

type reservationApi struct {
	svc      reservation.ServiceInterface
	validate *validator.Validate
}

func registerReservationAPI(
	g, admin *echo.Group,
	auth []echo.MiddlewareFunc,
	svc reservation.ServiceInterface,
	validate *validator.Validate,
) {
	api := reservationApi{svc: svc, validate: validate}

	g.GET("/reservations/meta", api.meta)

	rg := g.Group("/reservations", auth...)
	rg.GET("", api.queryMine)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieveMine)
	rg.POST("/:id/cancel", api.cancel)

	ag := admin.Group("/reservations")
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id/status", api.updateStatus)
}

func (api *reservationApi) meta(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, reservation.GetMeta())
}

func (api *reservationApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data reservation.NewReservation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReservation")
	}
	// prefill the contact details from the profile
	if data.FullName == "" {
		data.FullName = usr.Name
	}
	if data.Email == "" {
		data.Email = usr.Email
	}
	if data.Phone == "" {
		data.Phone = usr.Phone
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating reservation")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reservationApi) queryMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.QueryMine(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying reservations")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reservationApi) getMine(ctx echo.Context) (reservation.Reservation, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return reservation.Reservation{}, err
	}
	r, err := api.svc.GetMine(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID, ctx.Param("id"))
	return r, errors.Wrap(err, "getting reservation")
}

func (api *reservationApi) retrieveMine(ctx echo.Context) error {
	r, err := api.getMine(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reservationApi) cancel(ctx echo.Context) error {
	r, err := api.getMine(ctx)
	if err != nil {
		return err
	}
	r, err = api.svc.Cancel(ctx.Request().Context(), r)
	if err != nil {
		return errors.Wrap(err, "cancelling reservation")
	}
	return ctx.JSON(http.StatusOK, r)
}

// Admin

func (api *reservationApi) query(ctx echo.Context) error {
	var filter reservation.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var err error
	if filter.DateFrom, err = queryTime(ctx, "date_from"); err != nil {
		return err
	}
	if filter.DateTo, err = queryTimeUntil(ctx, "date_to"); err != nil {
		return err
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	res, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying reservations")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reservationApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.Get(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting reservation")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reservationApi) updateStatus(ctx echo.Context) error {
	r, err := api.svc.Get(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting reservation")
	}

	var data reservation.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	r, err = api.svc.UpdateStatus(ctx.Request().Context(), r, data.Status)
	if err != nil {
		return errors.Wrap(err, "updating reservation status")
	}
	return ctx.JSON(http.StatusOK, r)
}
