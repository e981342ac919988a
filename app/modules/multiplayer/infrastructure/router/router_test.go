package multiplayerrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerhandlers "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/handlers"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeHandlers struct{}

func (fakeHandlers) HandleResultsReportRequested(ctx context.Context, p *multiplayerevents.ResultsReportRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.ResultsReportedV1,
		Payload: &multiplayerevents.ResultsReportedPayloadV1{GameID: p.GameID, Published: 5},
	}}, nil
}

func (fakeHandlers) HandleMatchRecorded(ctx context.Context, p *multiplayerevents.MatchRecordedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.ResultsReportRequestedV1,
		Payload: &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: p.GameID},
	}}, nil
}

func (fakeHandlers) HandleMessageTargetsUpdateRequested(ctx context.Context, p *multiplayerevents.MessageTargetsUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (fakeHandlers) HandleGameStatusUpdateRequested(ctx context.Context, p *multiplayerevents.GameStatusUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (fakeHandlers) HandleLobbyAddRequested(ctx context.Context, p *multiplayerevents.LobbyChangeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (fakeHandlers) HandleLobbyRemoveRequested(ctx context.Context, p *multiplayerevents.LobbyChangeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (fakeHandlers) HandleStandingRequested(ctx context.Context, p *multiplayerevents.StandingRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

var _ multiplayerhandlers.Handlers = fakeHandlers{}

func TestMultiplayerRouter_MatchRecordedChainsIntoReport(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	defer pubSub.Close()

	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	r := NewMultiplayerRouter(logger, wmRouter, pubSub, pubSub, noop.NewTracerProvider().Tracer("test"), prometheus.NewRegistry())
	assert.False(t, r.metricsEnabled, "router metrics stay off in the test environment")
	require.NoError(t, r.Configure(ctx, fakeHandlers{}))

	reported, err := pubSub.Subscribe(ctx, multiplayerevents.ResultsReportedV1)
	require.NoError(t, err)

	go func() { _ = wmRouter.Run(ctx) }()
	defer r.Close()
	select {
	case <-wmRouter.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	msg, err := handlerwrapper.NewMessage(&multiplayerevents.MatchRecordedPayloadV1{GameID: 42}, "corr-42")
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(multiplayerevents.MatchRecordedV1, msg))

	select {
	case out := <-reported:
		out.Ack()
		var payload multiplayerevents.ResultsReportedPayloadV1
		require.NoError(t, json.Unmarshal(out.Payload, &payload))
		assert.Equal(t, multiplayerdomain.GameID(42), payload.GameID)
		assert.Equal(t, 5, payload.Published)
		assert.Equal(t, "corr-42", middleware.MessageCorrelationID(out), "correlation id flows through the chain")
		assert.Equal(t, multiplayerevents.ResultsReportedV1, out.Metadata.Get(handlerwrapper.TopicMetadataKey))
	case <-ctx.Done():
		t.Fatal("no report summary published")
	}
}

func TestNewMultiplayerRouter_MetricsOutsideTests(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, "production")

	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	r := NewMultiplayerRouter(slog.New(slog.DiscardHandler), wmRouter, nil, nil, noop.NewTracerProvider().Tracer("test"), prometheus.NewRegistry())
	assert.True(t, r.metricsEnabled)

	r = NewMultiplayerRouter(slog.New(slog.DiscardHandler), wmRouter, nil, nil, noop.NewTracerProvider().Tracer("test"), nil)
	assert.False(t, r.metricsEnabled)
}
