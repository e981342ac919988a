package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerpublisher "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/publisher"
	"github.com/Black-And-White-Club/royale-bot/config"
	"github.com/Black-And-White-Club/royale-bot/db/bundb"
	"github.com/Black-And-White-Club/royale-bot/pkg/eventbus"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

func main() {
	cliApp := &cli.App{
		Name:  "royale",
		Usage: "inspect and report battle royale results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.BoolFlag{Name: "verbose", Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			reportCommand(),
			leaderboardCommand(),
			standingCommand(),
			exportCommand(),
			lobbyCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env holds what a command needs; close releases it.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	service multiplayerservice.Service
	close   func()
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadEnv connects to Postgres and, when publish is set, to NATS.
func loadEnv(c *cli.Context, publish bool) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(c)
	ctx := c.Context

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { _ = dbService.Close() }}

	var publisher multiplayerservice.ReportPublisher
	if publish {
		bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger, eventbus.Options{})
		if err != nil {
			_ = dbService.Close()
			return nil, err
		}
		closers = append(closers, func() { _ = bus.Close() })
		publisher = multiplayerpublisher.NewPublisher(bus, logger, otel.Tracer("royale-cli"),
			rate.Limit(cfg.Reporting.PublishRate), cfg.Reporting.PublishBurst)
	}

	service := multiplayerservice.NewMultiplayerService(
		dbService.MultiplayerDB,
		publisher,
		logger,
		nil,
		otel.Tracer("royale-cli"),
		dbService.GetDB(),
	)

	return &env{
		cfg:     cfg,
		logger:  logger,
		service: service,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

func withEnv(publish bool, fn func(ctx context.Context, c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := loadEnv(c, publish)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(c.Context, c, e)
	}
}
