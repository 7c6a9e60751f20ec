package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core/dashboard"
)

func registerDashboardAPI(admin *echo.Group, svc *dashboard.Service) {
	admin.GET("/dashboard", func(ctx echo.Context) error {
		stats, err := svc.Stats(ctx.Request().Context(), getContextTenant(ctx).ID)
		if err != nil {
			return errors.Wrap(err, "gathering dashboard stats")
		}
		return ctx.JSON(http.StatusOK, stats)
	})
}
