package main

import (
	"context"
	"fmt"

	"github.com/tiplinehq/tipline/internal/config"
	"github.com/tiplinehq/tipline/internal/handler"
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/server"
	"github.com/tiplinehq/tipline/internal/service"
	"github.com/tiplinehq/tipline/internal/session"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/tenant"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/upload"
	"github.com/tiplinehq/tipline/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("tipline-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	tenants, err := tenant.NewCache(ctx, storages.TenantRepository)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading tenant cache")
	}

	sessions := session.NewStore(cfg.Sessions.Lifetime, cfg.Sessions.SweepInterval, log)
	defer sessions.Close()

	tokens := token.NewStore(cfg.Sessions.TokenLifetime, cfg.Sessions.SweepInterval)
	defer tokens.Close()

	staging := upload.NewStaging(cfg.Storage.Files.UploadDir)

	services := service.NewServices(storages, log)

	handlers, err := handler.NewHandlers(services, cfg.Server, tenants, sessions, tokens, staging, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	cleanup := workers.NewCleanupWorker(storages.SubmissionRepository, cfg.Workers.CleanupInterval, log)
	defer cleanup.Close()
	refresh := workers.NewRefreshWorker(tenants, cfg.Workers.CleanupInterval, log)
	defer refresh.Close()
	workers.NewWorkers(cleanup, refresh).Run()

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
