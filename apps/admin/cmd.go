package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/tenant"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
)

var isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

type commandLine struct {
	db         *sqlx.DB
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer // defaults to stdout
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Edvise back-office tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.tenantCmd(),
		cli.seedCmd(),
		cli.promoteCmd(),
	)
	return root
}

// run executes the command line args, args[0] being the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	if cli.out != nil {
		root.SetOut(cli.out)
	}
	if err := root.Execute(); err != nil {
		cli.logger.Error(fmt.Sprintf("error: %s", cli.describe(err)), err)
		return err
	}
	return nil
}

func (cli *commandLine) tenants(exec core.DBExecutor) *tenant.Service {
	return tenant.NewService(boiledrepos.NewTenantRepository(exec), cli.conf)
}

func (cli *commandLine) courses(exec core.DBExecutor) *catalog.Service {
	return catalog.NewService(boiledrepos.NewCourseRepository(exec))
}

func (cli *commandLine) pricing(exec core.DBExecutor) *pricing.Service {
	return pricing.NewService(boiledrepos.NewPricingRepository(exec), cli.logger)
}

func (cli *commandLine) content(exec core.DBExecutor) *content.Service {
	return content.NewService(boiledrepos.NewContentRepository(exec))
}

func (cli *commandLine) tenantBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	t, err := cli.tenants(cli.db).GetBySlug(ctx, slug)
	return t, errors.Wrapf(err, "tenant %q", slug)
}

// describe flattens validation errors into "field: message" pairs.
func (cli *commandLine) describe(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		msgs := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			msgs = append(msgs, fe.Field()+": "+fe.Translate(cli.translator))
		}
		return strings.Join(msgs, "; ")
	}

	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		msgs := make([]string, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			msgs = append(msgs, f.Field+": "+f.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
