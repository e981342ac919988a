package multiplayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerhandlers "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/handlers"
	multiplayerhttp "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/httpapi"
	multiplayerpublisher "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/publisher"
	multiplayerqueue "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/queue"
	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	multiplayerrouter "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/router"
	"github.com/Black-And-White-Club/royale-bot/app/observability"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	multiplayermetrics "github.com/Black-And-White-Club/royale-bot/app/observability/metrics/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/config"
	"github.com/Black-And-White-Club/royale-bot/pkg/eventbus"
	"github.com/Black-And-White-Club/royale-bot/pkg/jwt"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

const (
	// StreamName is the JetStream stream carrying every multiplayer subject.
	StreamName = "multiplayer"

	apiRate  = 10
	apiBurst = 20

	queueStopTimeout = 30 * time.Second
)

// Module represents the multiplayer results module.
type Module struct {
	EventBus           eventbus.EventBus
	MultiplayerService multiplayerservice.Service
	MultiplayerRouter  *multiplayerrouter.MultiplayerRouter
	Queue              multiplayerqueue.QueueService
	config             *config.Config
	observability      observability.Observability
	cancelFunc         context.CancelFunc
}

// NewMultiplayerModule wires the service, its watermill handlers, the report
// queue and the HTTP routes. The queue is skipped when no Postgres DSN is
// configured and the routes when httpRouter is nil.
func NewMultiplayerModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo multiplayerdb.Repository,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "multiplayer.NewMultiplayerModule called")

	var metrics multiplayermetrics.Metrics = multiplayermetrics.NewNoop()
	if obs.Registry.Prometheus != nil {
		m, err := multiplayermetrics.NewPrometheus(obs.Registry.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to register multiplayer metrics: %w", err)
		}
		metrics = m
	}

	if err := eventBus.CreateStream(ctx, StreamName, "multiplayer.>"); err != nil {
		return nil, fmt.Errorf("failed to create multiplayer stream: %w", err)
	}

	publisher := multiplayerpublisher.NewPublisher(
		eventBus,
		logger,
		tracer,
		rate.Limit(cfg.Reporting.PublishRate),
		cfg.Reporting.PublishBurst,
	)

	service := multiplayerservice.NewMultiplayerService(repo, publisher, logger, metrics, tracer, db)

	handlers := multiplayerhandlers.NewMultiplayerHandlers(service, logger, tracer)
	multiplayerRouter := multiplayerrouter.NewMultiplayerRouter(logger, router, eventBus, eventBus, tracer, obs.Registry.Prometheus)
	if err := multiplayerRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure multiplayer router: %w", err)
	}

	module := &Module{
		EventBus:           eventBus,
		MultiplayerService: service,
		MultiplayerRouter:  multiplayerRouter,
		config:             cfg,
		observability:      obs,
	}

	if cfg.Postgres.DSN != "" && db != nil {
		queue, err := multiplayerqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, service, multiplayerqueue.Config{
			SweepInterval: cfg.Reporting.PollInterval,
			MaxWorkers:    cfg.Reporting.MaxWorkers,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create multiplayer queue: %w", err)
		}
		module.Queue = queue
	}

	if httpRouter != nil {
		api := multiplayerhttp.NewHandlers(service, logger)
		httpRouter.Mount("/api", multiplayerhttp.Routes(api, multiplayerhttp.RouterConfig{
			Tokens:         jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.Issuer),
			Limiter:        multiplayerhttp.NewIPRateLimiter(apiRate, apiBurst),
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		}))
	}

	return module, nil
}

// Run starts the report queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting multiplayer module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		// the queue outlives ctx so Close can drain running jobs
		if err := m.Queue.Start(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to start multiplayer queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Multiplayer module goroutine stopped")
}

// Close stops the queue, waiting up to queueStopTimeout for running jobs.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping multiplayer module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queueStopTimeout)
		defer cancel()
		if err := m.Queue.Stop(ctx); err != nil {
			logger.Error("Failed to stop multiplayer queue", attr.Error(err))
		}
	}

	logger.Info("Multiplayer module stopped")
	return nil
}
