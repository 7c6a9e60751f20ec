package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/dashboard"
	"github.com/trezcool/edvise/core/payment"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/core/writing"
)

type (
	// Deps holds everything the API needs; filled by the DI container.
	Deps struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		TenantSvc      tenant.ServiceInterface
		UserSvc        user.ServiceInterface
		CourseSvc      catalog.ServiceInterface
		PricingSvc     pricing.ServiceInterface
		ReservationSvc reservation.ServiceInterface
		WritingSvc     writing.ServiceInterface
		PaymentSvc     payment.ServiceInterface
		ContentSvc     content.ServiceInterface
		DashboardSvc   *dashboard.Service
	}

	Server struct {
		deps     Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.Server.DisableRecovery) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Server.BodyLimit != "" {
		s.app.Use(middleware.BodyLimit(conf.Server.BodyLimit))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1", tenantMiddleware(s.deps.TenantSvc, conf.Tenancy.Header))
	auth := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(newJWTConfig(conf.Server.AuthSigningKey)),
		userMiddleware(s.deps.UserSvc, conf.Server.AuthIssuer),
	}
	admin := v1.Group("/admin", append(auth, adminMiddleware())...)

	registerTenantAPI(v1, auth)
	registerCatalogAPI(v1, admin, s.deps.CourseSvc, s.deps.Validate)
	registerPricingAPI(v1, admin, s.deps.PricingSvc, s.deps.Validate)
	registerReservationAPI(v1, admin, auth, s.deps.ReservationSvc, s.deps.Validate)
	registerWritingAPI(v1, admin, auth, s.deps.WritingSvc, s.deps.Validate)
	registerPaymentAPI(v1, admin, auth, s.deps.PaymentSvc, s.deps.Validate)
	registerContentAPI(v1, admin, s.deps.ContentSvc, s.deps.Validate)
	registerUserAPI(admin, s.deps.UserSvc, s.deps.Validate)
	registerDashboardAPI(admin, s.deps.DashboardSvc)
}

// Start serves until the server is shut down; listening failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
