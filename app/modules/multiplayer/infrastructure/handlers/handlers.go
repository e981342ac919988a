package multiplayerhandlers

import (
	"context"
	"log/slog"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// MultiplayerHandlers handles multiplayer events.
type MultiplayerHandlers struct {
	service multiplayerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewMultiplayerHandlers creates a new instance of MultiplayerHandlers.
func NewMultiplayerHandlers(service multiplayerservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &MultiplayerHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// replyTopic returns the reply subject of a request-reply message, or fallback.
func replyTopic(ctx context.Context, fallback string) string {
	if replyTo, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && replyTo != "" {
		return replyTo
	}
	return fallback
}
