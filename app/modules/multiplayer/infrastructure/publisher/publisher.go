package multiplayerpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerrender "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/render"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/Black-And-White-Club/royale-bot/pkg/eventbus"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	MetadataGameID            = "game_id"
	MetadataType              = "type"
	MetadataSubType           = "subtype"
	MetadataBeatmapID         = "beatmap_id"
	MetadataSameBeatmapNumber = "same_beatmap_number"
	MetadataTargets           = "targets"
)

// ReportableTopic is the base topic a reportable type is published on. The
// game id is appended as the last token.
func ReportableTopic(t multiplayerdomain.ReportableType) string {
	return "multiplayer.reportable." + string(t) + ".v1"
}

// ReportablePublishedPayloadV1 is the message body of a published reportable.
type ReportablePublishedPayloadV1 struct {
	GameID     multiplayerdomain.GameID            `json:"gameId"`
	Reportable multiplayerdomain.ReportableContext `json:"reportable"`
	Targets    []multiplayerdomain.MessageTarget   `json:"targets"`
	// Text is the rendered message for chat clients.
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Publisher publishes reportables on the event bus, throttled so chat
// integrations downstream are not flooded.
type Publisher struct {
	publisher message.Publisher
	limiter   *rate.Limiter
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewPublisher creates a Publisher. A non-positive limit disables throttling.
func NewPublisher(pub message.Publisher, logger *slog.Logger, tracer trace.Tracer, limit rate.Limit, burst int) *Publisher {
	if limit <= 0 {
		limit = rate.Inf
	}
	return &Publisher{
		publisher: pub,
		limiter:   rate.NewLimiter(limit, max(burst, 1)),
		logger:    logger,
		tracer:    tracer,
	}
}

// PublishReportable publishes one reportable and returns once the bus has
// accepted it.
func (p *Publisher) PublishReportable(ctx context.Context, game multiplayerdomain.Game, item multiplayerdomain.ReportableContext) error {
	ctx, span := p.tracer.Start(ctx, "multiplayer.PublishReportable", trace.WithAttributes(
		attribute.String("reportable.type", string(item.Type)),
		attribute.String("reportable.subtype", item.SubType),
		attribute.Int64("game.id", int64(game.ID)),
	))
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("publish throttled: %w", err)
	}

	text, err := multiplayerrender.ReportableText(item)
	if err != nil {
		return fmt.Errorf("failed to render reportable: %w", err)
	}

	targets := game.MessageTargets
	if targets == nil {
		targets = []multiplayerdomain.MessageTarget{}
	}
	msg, err := handlerwrapper.NewMessage(&ReportablePublishedPayloadV1{
		GameID:      game.ID,
		Reportable:  item,
		Targets:     targets,
		Text:        text,
		PublishedAt: time.Now().UTC(),
	}, attr.CorrelationIDFromContext(ctx))
	if err != nil {
		return err
	}

	encodedTargets, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("failed to encode targets: %w", err)
	}
	msg.Metadata.Set(MetadataGameID, game.ID.String())
	msg.Metadata.Set(MetadataType, string(item.Type))
	msg.Metadata.Set(MetadataSubType, item.SubType)
	msg.Metadata.Set(MetadataBeatmapID, item.BeatmapID)
	msg.Metadata.Set(MetadataSameBeatmapNumber, strconv.Itoa(item.SameBeatmapNumber))
	msg.Metadata.Set(MetadataTargets, string(encodedTargets))
	msg.SetContext(ctx)

	if err := eventbus.PublishWithGameScope(p.publisher, ReportableTopic(item.Type), game.ID.String(), msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to publish %s/%s: %w", item.Type, item.SubType, err)
	}

	p.logger.DebugContext(ctx, "Reportable published",
		attr.ExtractCorrelationID(ctx),
		attr.GameID(game.ID),
		attr.String("type", string(item.Type)),
		attr.String("subtype", item.SubType),
		attr.String("round", item.Key().String()),
	)
	return nil
}
