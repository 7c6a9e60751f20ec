package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/edvise/apps/api/echo"
	"github.com/trezcool/edvise/apps/shared"
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
	emailsvc "github.com/trezcool/edvise/services/email"
	"github.com/trezcool/edvise/services/imagehost"
	logsvc "github.com/trezcool/edvise/services/logger"
	"github.com/trezcool/edvise/storage/database"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newZap(conf *core.Config) (*zap.SugaredLogger, error) {
	return logsvc.NewZap(conf)
}

func newLogger(out *zap.SugaredLogger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(out.Named("API"), conf)
}

func newDBLogger(out *zap.SugaredLogger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(out.Named("DB"), conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, err
		}

		if err = database.Migrate(ctx, db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, out *zap.SugaredLogger, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, out)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newImageHost(conf *core.Config) (payment.ImageHost, error) {
	client, err := imagehost.NewClient(conf)
	if err != nil {
		return nil, errors.Wrap(err, "image host")
	}
	return client, nil
}

func newValidator() (*validator.Validate, ut.Translator) {
	return shared.NewValidator()
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZap))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newImageHost))
	must(c.Provide(newValidator))

	// repositories
	must(c.Provide(boiledrepos.NewTenantRepository, dig.As(new(tenant.Repository))))
	must(c.Provide(boiledrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(boiledrepos.NewCourseRepository, dig.As(new(catalog.Repository))))
	must(c.Provide(boiledrepos.NewPricingRepository, dig.As(new(pricing.Repository))))
	must(c.Provide(boiledrepos.NewReservationRepository, dig.As(new(reservation.Repository))))
	must(c.Provide(boiledrepos.NewWritingOrderRepository, dig.As(new(writing.Repository))))
	must(c.Provide(boiledrepos.NewPaymentProofRepository, dig.As(new(payment.Repository))))
	must(c.Provide(boiledrepos.NewContentRepository, dig.As(new(content.Repository))))

	// services
	must(c.Provide(tenant.NewService, dig.As(new(tenant.ServiceInterface))))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(catalog.NewService, dig.As(new(catalog.ServiceInterface))))
	must(c.Provide(pricing.NewService, dig.As(new(pricing.ServiceInterface), new(reservation.Quoter))))
	must(c.Provide(reservation.NewService, dig.As(
		new(reservation.ServiceInterface),
		new(payment.ReservationGetter),
		new(dashboard.ReservationCounter),
	)))
	must(c.Provide(writing.NewService, dig.As(
		new(writing.ServiceInterface),
		new(payment.OrderGetter),
		new(dashboard.OrderCounter),
	)))
	must(c.Provide(payment.NewService, dig.As(new(payment.ServiceInterface), new(dashboard.ProofCounter))))
	must(c.Provide(content.NewService, dig.As(new(content.ServiceInterface))))
	must(c.Provide(dashboard.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
