package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/payment"
)

var errFileRequired = errors.New("a file is required")

type paymentApi struct {
	svc      payment.ServiceInterface
	validate *validator.Validate
}

func registerPaymentAPI(
	g, admin *echo.Group,
	auth []echo.MiddlewareFunc,
	svc payment.ServiceInterface,
	validate *validator.Validate,
) {
	api := paymentApi{svc: svc, validate: validate}

	pg := g.Group("/payments/proofs", auth...)
	pg.POST("", api.upload)
	pg.GET("", api.queryMine)

	ag := admin.Group("/payments/proofs")
	ag.GET("", api.query)
	ag.PUT("/:id/review", api.review)
}

// readFormFile reads the multipart file of the given field.
func readFormFile(ctx echo.Context, field string) ([]byte, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, core.NewFieldError(field, errFileRequired)
		}
		return nil, errors.Wrap(err, "reading multipart form")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	return content, errors.Wrap(err, "reading uploaded file")
}

func (api *paymentApi) upload(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	subject := payment.Subject{Type: ctx.FormValue("subject_type"), ID: ctx.FormValue("subject_id")}
	if err := subject.Validate(api.validate); err != nil {
		return err
	}
	content, err := readFormFile(ctx, "file")
	if err != nil {
		return err
	}

	uploader := payment.Uploader{UserID: usr.ID, Name: usr.Name, Email: usr.Email}
	p, err := api.svc.Upload(ctx.Request().Context(), getContextTenant(ctx), uploader, subject, content)
	if err != nil {
		return errors.Wrap(err, "uploading payment proof")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) queryMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	subject := payment.Subject{
		Type: core.CleanString(ctx.QueryParam("subject_type"), true /* lower */),
		ID:   core.CleanString(ctx.QueryParam("subject_id")),
	}
	proofs, err := api.svc.QueryMine(ctx.Request().Context(), getContextTenant(ctx).ID, usr.ID, subject)
	if err != nil {
		return errors.Wrap(err, "querying payment proofs")
	}
	return ctx.JSON(http.StatusOK, proofs)
}

// Admin

func (api *paymentApi) query(ctx echo.Context) error {
	var filter payment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	var ord Ordering
	ord.Bind(ctx)

	proofs, err := api.svc.Query(ctx.Request().Context(), getContextTenant(ctx).ID, &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying payment proofs")
	}
	return ctx.JSON(http.StatusOK, proofs)
}

func (api *paymentApi) review(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.Get(ctx.Request().Context(), getContextTenant(ctx).ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting payment proof")
	}

	var data payment.Review
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err = api.svc.Review(ctx.Request().Context(), p, usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "reviewing payment proof")
	}
	return ctx.JSON(http.StatusOK, p)
}
