package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/testtype"
)

type contentApi struct {
	svc      content.ServiceInterface
	validate *validator.Validate
}

func registerContentAPI(g, admin *echo.Group, svc content.ServiceInterface, validate *validator.Validate) {
	api := contentApi{svc: svc, validate: validate}

	g.GET("/carousels", api.queryCarousels(true))
	g.GET("/faqs", api.queryFAQs(true))
	g.GET("/testimonials", api.queryTestimonials(true))

	cg := admin.Group("/carousels")
	cg.GET("", api.queryCarousels(false))
	cg.POST("", api.createCarousel)
	cg.PUT("/reorder", api.reorder(content.KindCarousel))
	cg.GET("/:id", api.retrieveCarousel)
	cg.PUT("/:id", api.updateCarousel)
	cg.DELETE("/:id", api.destroyCarousel)

	fg := admin.Group("/faqs")
	fg.GET("", api.queryFAQs(false))
	fg.POST("", api.createFAQ)
	fg.PUT("/reorder", api.reorder(content.KindFAQ))
	fg.GET("/:id", api.retrieveFAQ)
	fg.PUT("/:id", api.updateFAQ)
	fg.DELETE("/:id", api.destroyFAQ)

	tg := admin.Group("/testimonials")
	tg.GET("", api.queryTestimonials(false))
	tg.POST("", api.createTestimonial)
	tg.PUT("/reorder", api.reorder(content.KindTestimonial))
	tg.GET("/:id", api.retrieveTestimonial)
	tg.PUT("/:id", api.updateTestimonial)
	tg.DELETE("/:id", api.destroyTestimonial)
}

func (api *contentApi) reorder(kind string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data content.Reorder
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Reorder")
		}
		if err := api.validate.Struct(data); err != nil {
			return err
		}
		if err := api.svc.Reorder(ctx.Request().Context(), getContextTenant(ctx).ID, kind, data.IDs); err != nil {
			return errors.Wrap(err, "reordering "+kind)
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

// Carousels

func (api *contentApi) queryCarousels(activeOnly bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		items, err := api.svc.QueryCarousels(ctx.Request().Context(), getContextTenant(ctx).ID, activeOnly)
		if err != nil {
			return errors.Wrap(err, "querying carousels")
		}
		return ctx.JSON(http.StatusOK, items)
	}
}

func (api *contentApi) createCarousel(ctx echo.Context) error {
	var data content.CarouselData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CarouselData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.CreateCarousel(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating carousel")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *contentApi) retrieveCarousel(ctx echo.Context) error {
	c, err := api.svc.GetCarousel(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting carousel")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contentApi) updateCarousel(ctx echo.Context) error {
	c, err := api.svc.GetCarousel(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting carousel")
	}
	var data content.CarouselData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CarouselData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err = api.svc.UpdateCarousel(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating carousel")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contentApi) destroyCarousel(ctx echo.Context) error {
	if err := api.svc.DeleteCarousel(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting carousel")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// FAQs

func (api *contentApi) queryFAQs(activeOnly bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		category := core.CleanString(ctx.QueryParam("category"), true /* lower */)
		items, err := api.svc.QueryFAQs(ctx.Request().Context(), getContextTenant(ctx).ID, activeOnly, category)
		if err != nil {
			return errors.Wrap(err, "querying faqs")
		}
		return ctx.JSON(http.StatusOK, items)
	}
}

func (api *contentApi) createFAQ(ctx echo.Context) error {
	var data content.FAQData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FAQData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	f, err := api.svc.CreateFAQ(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating faq")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *contentApi) retrieveFAQ(ctx echo.Context) error {
	f, err := api.svc.GetFAQ(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting faq")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *contentApi) updateFAQ(ctx echo.Context) error {
	f, err := api.svc.GetFAQ(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting faq")
	}
	var data content.FAQData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FAQData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	f, err = api.svc.UpdateFAQ(ctx.Request().Context(), f, data)
	if err != nil {
		return errors.Wrap(err, "updating faq")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *contentApi) destroyFAQ(ctx echo.Context) error {
	if err := api.svc.DeleteFAQ(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting faq")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Testimonials

func (api *contentApi) queryTestimonials(publishedOnly bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		testType := ctx.QueryParam("test_type")
		if key, ok := testtype.Normalize(testType); ok {
			testType = key
		}
		items, err := api.svc.QueryTestimonials(ctx.Request().Context(), getContextTenant(ctx).ID, publishedOnly, testType)
		if err != nil {
			return errors.Wrap(err, "querying testimonials")
		}
		return ctx.JSON(http.StatusOK, items)
	}
}

func (api *contentApi) createTestimonial(ctx echo.Context) error {
	var data content.TestimonialData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestimonialData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.CreateTestimonial(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating testimonial")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *contentApi) retrieveTestimonial(ctx echo.Context) error {
	t, err := api.svc.GetTestimonial(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting testimonial")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *contentApi) updateTestimonial(ctx echo.Context) error {
	t, err := api.svc.GetTestimonial(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting testimonial")
	}
	var data content.TestimonialData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestimonialData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err = api.svc.UpdateTestimonial(ctx.Request().Context(), t, data)
	if err != nil {
		return errors.Wrap(err, "updating testimonial")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *contentApi) destroyTestimonial(ctx echo.Context) error {
	if err := api.svc.DeleteTestimonial(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting testimonial")
	}
	return ctx.NoContent(http.StatusNoContent)
}
