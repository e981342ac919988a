package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/app/observability"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/Black-And-White-Club/royale-bot/config"
	"github.com/Black-And-White-Club/royale-bot/db/bundb"
	"github.com/Black-And-White-Club/royale-bot/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	queueGroup      = "royale-bot"
	shutdownTimeout = 15 * time.Second
)

// App holds every long-lived component of the results service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router
	HTTPServer    *http.Server
	Modules       Modules
	wg            sync.WaitGroup
}

// Modules holds the application modules.
type Modules struct {
	Multiplayer *multiplayer.Module
}

// NewApp connects to Postgres and NATS and builds the modules.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Provider.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger, eventbus.Options{
		QueueGroup:    queueGroup,
		DurablePrefix: queueGroup,
	})
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = eventBus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            dbService,
		EventBus:      eventBus,
		Router:        router,
		HTTPRouter:    newHTTPRouter(obs),
	}

	multiplayerModule, err := multiplayer.NewMultiplayerModule(
		ctx,
		cfg,
		obs,
		dbService.MultiplayerDB,
		dbService.GetDB(),
		eventBus,
		router,
		app.HTTPRouter,
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize multiplayer module: %w", err)
	}
	app.Modules.Multiplayer = multiplayerModule

	app.HTTPRouter.Get("/healthz", app.handleHealth)
	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

func newHTTPRouter(obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if obs.Registry.Prometheus != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Registry.Prometheus, promhttp.HandlerOpts{}))
	}
	return r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if q := app.Modules.Multiplayer.Queue; q != nil {
		if err := q.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// Run starts the modules, the HTTP server and the Watermill router, and blocks
// until ctx is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Provider.Logger

	app.wg.Add(1)
	go app.Modules.Multiplayer.Run(ctx, &app.wg)

	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", attr.String("address", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", attr.Error(err))
		}
	}()

	if err := app.Router.Run(ctx); err != nil {
		return fmt.Errorf("watermill router stopped: %w", err)
	}
	return nil
}

// Close shuts everything down in reverse start order.
func (app *App) Close() error {
	logger := app.Observability.Provider.Logger
	var errs []error

	if app.HTTPServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if app.Modules.Multiplayer != nil {
		if err := app.Modules.Multiplayer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("multiplayer module: %w", err))
		}
	}
	app.wg.Wait()

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("watermill router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	logger.Info("Application shut down")
	return errors.Join(errs...)
}
