package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/payment"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/core/writing"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidIssuer      = echo.NewHTTPError(http.StatusUnauthorized, "invalid token issuer")
	errWrongTenant        = echo.NewHTTPError(http.StatusForbidden, "token was issued for another tenant")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errTenantNotFound     = echo.NewHTTPError(http.StatusNotFound, tenant.ErrNotFound.Error())

	errInvalidBool = errors.New("must be true or false")
	errInvalidDate = errors.New("must be a date (YYYY-MM-DD) or an RFC 3339 time")

	// domain errors with a dedicated status code
	statusCodes = map[error]int{
		tenant.ErrNotFound:             http.StatusNotFound,
		user.ErrNotFound:               http.StatusNotFound,
		catalog.ErrNotFound:            http.StatusNotFound,
		pricing.ErrTierNotFound:        http.StatusNotFound,
		pricing.ErrPromotionNotFound:   http.StatusNotFound,
		reservation.ErrNotFound:        http.StatusNotFound,
		writing.ErrNotFound:            http.StatusNotFound,
		payment.ErrNotFound:            http.StatusNotFound,
		content.ErrCarouselNotFound:    http.StatusNotFound,
		content.ErrFAQNotFound:         http.StatusNotFound,
		content.ErrTestimonialNotFound: http.StatusNotFound,

		tenant.ErrSlugExists:  http.StatusConflict,
		catalog.ErrSlugExists: http.StatusConflict,
		pricing.ErrCodeExists: http.StatusConflict,
		payment.ErrDuplicate:  http.StatusConflict,

		user.ErrRoleTooHigh:     http.StatusForbidden,
		user.ErrSelfDemotion:    http.StatusForbidden,
		user.ErrAccountInactive: http.StatusForbidden,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := statusCodes[cause]; ok {
				code = c
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
				logger.Error(msg, errors.Wrap(err, msg), usr)
			} else {
				logger.Error(msg, errors.Wrap(err, msg))
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
