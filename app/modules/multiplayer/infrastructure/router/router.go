package multiplayerrouter

import (
	"context"
	"log/slog"
	"os"
	"time"

	multiplayerhandlers "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/handlers"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// MultiplayerRouter binds multiplayer topics to their handlers.
type MultiplayerRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewMultiplayerRouter creates a new instance of the router. Router metrics
// are registered when a registry is given outside the test environment.
func NewMultiplayerRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *MultiplayerRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "royale", "multiplayer")
		metricsBuilder = &builder
	}

	return &MultiplayerRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the module's handlers.
func (r *MultiplayerRouter) Configure(routerCtx context.Context, handlers multiplayerhandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware for Multiplayer")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

// handlerDeps provides a scannable structure for the registerHandler helper.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler adds a topic to the router. Produced messages are published
// to the topic their handler chose.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "multiplayer." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		handlerwrapper.TopicPublisher{Publisher: deps.publisher},
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handler,
		),
	)
}

// RegisterHandlers binds event topics to their handler logic.
func (r *MultiplayerRouter) RegisterHandlers(ctx context.Context, handlers multiplayerhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Multiplayer Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	// REPORTING
	registerHandler(deps, multiplayerevents.ResultsReportRequestedV1, handlers.HandleResultsReportRequested)
	registerHandler(deps, multiplayerevents.MatchRecordedV1, handlers.HandleMatchRecorded)

	// ADMIN
	registerHandler(deps, multiplayerevents.MessageTargetsUpdateRequestedV1, handlers.HandleMessageTargetsUpdateRequested)
	registerHandler(deps, multiplayerevents.GameStatusUpdateRequestedV1, handlers.HandleGameStatusUpdateRequested)
	registerHandler(deps, multiplayerevents.LobbyAddRequestedV1, handlers.HandleLobbyAddRequested)
	registerHandler(deps, multiplayerevents.LobbyRemoveRequestedV1, handlers.HandleLobbyRemoveRequested)

	// REQUEST-REPLY
	registerHandler(deps, multiplayerevents.StandingRequestedV1, handlers.HandleStandingRequested)

	return nil
}

// Close stops the router and cleans up resources.
func (r *MultiplayerRouter) Close() error {
	return r.Router.Close()
}
