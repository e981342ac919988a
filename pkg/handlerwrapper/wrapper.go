// Package handlerwrapper adapts typed handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// CtxKeyReplyTo holds the reply_to metadata of the incoming message.
const CtxKeyReplyTo ctxKey = "reply_to"

const (
	// TopicMetadataKey names the topic a produced message is published to.
	TopicMetadataKey = "topic"
	// ReplyToMetadataKey is set by requesters expecting a reply on a specific subject.
	ReplyToMetadataKey = "reply_to"
)

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and turns
// its results into messages carrying their topic in metadata. Payloads that do
// not decode are logged and acknowledged.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = attr.WithCorrelationID(ctx, correlationID)
		if replyTo := msg.Metadata.Get(ReplyToMetadataKey); replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(r.Payload, correlationID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range r.Metadata {
				m.Metadata.Set(k, v)
			}
			m.Metadata.Set(TopicMetadataKey, r.Topic)
			out = append(out, m)
		}
		return out, nil
	}
}

// NewMessage marshals payload into a message carrying the correlation id.
func NewMessage(payload any, correlationID string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	m := message.NewMessage(watermill.NewUUID(), data)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}

// TopicPublisher publishes each message to the topic named in its metadata,
// falling back to the topic it was given.
type TopicPublisher struct {
	message.Publisher
}

// Publish routes every message by its topic metadata.
func (p TopicPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, m := range messages {
		target := m.Metadata.Get(TopicMetadataKey)
		if target == "" {
			target = topic
		}
		if target == "" {
			return fmt.Errorf("message %s has no topic", m.UUID)
		}
		if err := p.Publisher.Publish(target, m); err != nil {
			return err
		}
	}
	return nil
}
