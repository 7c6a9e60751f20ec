package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edvise/core/testtype"
	"github.com/trezcool/edvise/core/user"
)

// publicTenant is what anonymous visitors may know about the tenant.
type publicTenant struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Domain       string `json:"domain,omitempty"`
	ContactEmail string `json:"contact_email"`
}

type meResponse struct {
	user.User
	IsAdmin bool `json:"is_admin"`
}

type normalizeResponse struct {
	Query string         `json:"query"`
	Match *testtype.Type `json:"match"`
}

func registerTenantAPI(g *echo.Group, auth []echo.MiddlewareFunc) {
	g.GET("/tenant", getTenant)
	g.GET("/me", getMe, auth...)
	g.GET("/test-types", queryTestTypes)
	g.GET("/test-types/normalize", normalizeTestType)
}

func getTenant(ctx echo.Context) error {
	tnt := getContextTenant(ctx)
	return ctx.JSON(http.StatusOK, publicTenant{
		Slug:         tnt.Slug,
		Name:         tnt.Name,
		Domain:       tnt.Domain,
		ContactEmail: tnt.ContactEmail,
	})
}

func getMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, meResponse{User: usr, IsAdmin: usr.IsAdmin()})
}

func queryTestTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, testtype.All())
}

func normalizeTestType(ctx echo.Context) error {
	q := ctx.QueryParam("q")
	res := normalizeResponse{Query: q}
	if key, ok := testtype.Normalize(q); ok {
		t, _ := testtype.Get(key)
		res.Match = &t
	}
	return ctx.JSON(http.StatusOK, res)
}
