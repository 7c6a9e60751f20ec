package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/pricing"
)

type pricingApi struct {
	svc      pricing.ServiceInterface
	validate *validator.Validate
}

func registerPricingAPI(g, admin *echo.Group, svc pricing.ServiceInterface, validate *validator.Validate) {
	api := pricingApi{svc: svc, validate: validate}

	g.GET("/pricing/tiers", api.queryActiveTiers)
	g.POST("/pricing/quote", api.quote)

	tg := admin.Group("/pricing/tiers")
	tg.GET("", api.queryTiers)
	tg.POST("", api.createTier)
	tg.PUT("/:id", api.updateTier)
	tg.DELETE("/:id", api.destroyTier)

	pg := admin.Group("/pricing/promotions")
	pg.GET("", api.queryPromotions)
	pg.POST("", api.createPromotion)
	pg.PUT("/:id", api.updatePromotion)
	pg.DELETE("/:id", api.destroyPromotion)
}

func (api *pricingApi) tiers(ctx echo.Context, filter *pricing.TierFilter) error {
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to TierFilter")
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	tiers, err := api.svc.QueryTiers(ctx.Request().Context(), getContextTenant(ctx).ID, filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying pricing tiers")
	}
	return ctx.JSON(http.StatusOK, tiers)
}

func (api *pricingApi) queryActiveTiers(ctx echo.Context) error {
	active := true
	return api.tiers(ctx, &pricing.TierFilter{Active: &active})
}

func (api *pricingApi) quote(ctx echo.Context) error {
	var data pricing.QuoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuoteRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.Quote(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "quoting")
	}
	return ctx.JSON(http.StatusOK, q)
}

// Admin

func (api *pricingApi) queryTiers(ctx echo.Context) error {
	active, err := queryBool(ctx, "active")
	if err != nil {
		return err
	}
	return api.tiers(ctx, &pricing.TierFilter{Active: active})
}

func (api *pricingApi) createTier(ctx echo.Context) error {
	var data pricing.TierData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TierData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTier(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating pricing tier")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *pricingApi) updateTier(ctx echo.Context) error {
	t, err := api.svc.GetTier(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting pricing tier")
	}

	var data pricing.TierData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TierData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err = api.svc.UpdateTier(ctx.Request().Context(), t, data)
	if err != nil {
		return errors.Wrap(err, "updating pricing tier")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *pricingApi) destroyTier(ctx echo.Context) error {
	t, err := api.svc.GetTier(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting pricing tier")
	}
	if err := api.svc.DeleteTier(ctx.Request().Context(), t); err != nil {
		return errors.Wrap(err, "deleting pricing tier")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *pricingApi) queryPromotions(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	promos, err := api.svc.QueryPromotions(ctx.Request().Context(), getContextTenant(ctx).ID, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying promotions")
	}
	return ctx.JSON(http.StatusOK, promos)
}

func (api *pricingApi) createPromotion(ctx echo.Context) error {
	var data pricing.PromotionData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PromotionData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.CreatePromotion(ctx.Request().Context(), getContextTenant(ctx).ID, data)
	if err != nil {
		return errors.Wrap(err, "creating promotion")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *pricingApi) updatePromotion(ctx echo.Context) error {
	p, err := api.svc.GetPromotion(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting promotion")
	}

	var data pricing.PromotionData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PromotionData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err = api.svc.UpdatePromotion(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating promotion")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pricingApi) destroyPromotion(ctx echo.Context) error {
	p, err := api.svc.GetPromotion(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting promotion")
	}
	if err := api.svc.DeletePromotion(ctx.Request().Context(), p); err != nil {
		return errors.Wrap(err, "deleting promotion")
	}
	return ctx.NoContent(http.StatusNoContent)
}
