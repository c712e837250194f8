// Package main starts the interactive gestortareas console. It works on the
// file backend directly; deployments on MongoDB are managed through the API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/emipaz/gestortareas/internal/console"
	"github.com/emipaz/gestortareas/internal/core/service"
	"github.com/emipaz/gestortareas/internal/infrastructure/config"
	"github.com/emipaz/gestortareas/internal/infrastructure/store/filestore"
	"github.com/emipaz/gestortareas/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx := context.Background()

	st, err := filestore.New(cfg.Store.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Store.Dir).Msg("opening store")
	}
	svc, err := service.NewTaskService(ctx, st, log)
	if err != nil {
		log.Fatal().Err(err).Msg("loading state")
	}

	runErr := console.New(svc, os.Stdin, os.Stdout).Run(ctx)

	if err := svc.Close(ctx); err != nil {
		log.Error().Err(err).Msg("flushing state")
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
