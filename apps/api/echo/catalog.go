package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/catalog"
)

type catalogApi struct {
	svc      catalog.ServiceInterface
	validate *validator.Validate
}

func registerCatalogAPI(g, admin *echo.Group, svc catalog.ServiceInterface, validate *validator.Validate) {
	api := catalogApi{svc: svc, validate: validate}

	g.GET("/courses", api.queryPublished)
	g.GET("/courses/:slug", api.retrievePublished)

	ag := admin.Group("/courses")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.PUT("/:id/publish", api.setPublished)
}

func (api *catalogApi) bindFilter(ctx echo.Context) (*catalog.QueryFilter, error) {
	var filter catalog.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return nil, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	return &filter, nil
}

func (api *catalogApi) queryPublished(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	published := true
	filter.Published = &published

	var ord Ordering
	ord.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrievePublished(ctx echo.Context) error {
	c, err := api.svc.GetPublishedBySlug(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting course by slug")
	}
	return ctx.JSON(http.StatusOK, c)
}

// Admin

func (api *catalogApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	if filter.Published, err = queryBool(ctx, "published"); err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) create(ctx echo.Context) error {
	var data catalog.CourseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *catalogApi) update(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}

	var data catalog.CourseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) setPublished(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}

	var data catalog.SetPublished
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetPublished")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	c, err = api.svc.SetPublished(ctx.Request().Context(), c, *data.IsPublished)
	if err != nil {
		return errors.Wrap(err, "publishing course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) destroy(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if err := api.svc.Delete(ctx.Request().Context(), c); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
