package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Black-And-White-Club/royale-bot/app"
	"github.com/Black-And-White-Club/royale-bot/app/observability"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/Black-And-White-Club/royale-bot/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs := observability.Init(observability.Config{
		ServiceName: "royale-bot",
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	logger := obs.Provider.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize app", attr.Error(err))
		os.Exit(1)
	}

	go application.WaitForShutdown(ctx, cancel)

	runErr := application.Run(ctx)
	if runErr != nil {
		logger.Error("Application stopped with error", attr.Error(runErr))
	}

	if err := application.Close(); err != nil {
		logger.Error("Error during shutdown", attr.Error(err))
	}
	if runErr != nil {
		os.Exit(1)
	}
}
