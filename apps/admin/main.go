package main

import (
	"context"
	"os"

	"github.com/trezcool/edvise/apps/shared"
	"github.com/trezcool/edvise/core"
	logsvc "github.com/trezcool/edvise/services/logger"
	"github.com/trezcool/edvise/storage/database"
)

func main() {
	conf := core.NewConfig()

	out, err := logsvc.NewZap(conf)
	if err != nil {
		panic(err)
	}
	defer func() { _ = out.Sync() }()
	logger := logsvc.NewRollbarLogger(out.Named("ADMIN"), conf)

	// set up DB
	ctx := context.Background()
	if err = database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err = database.Ping(ctx, db); err != nil {
		logger.Fatal("reaching database", err)
	}

	validate, translator := shared.NewValidator()
	cli := &commandLine{
		db:         db,
		conf:       conf,
		logger:     logger,
		validate:   validate,
		translator: translator,
	}
	if err := cli.run(os.Args); err != nil {
		os.Exit(1)
	}
}
