package multiplayerintegrationtests

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer"
	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerpublisher "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/publisher"
	multiplayermetrics "github.com/Black-And-White-Club/royale-bot/app/observability/metrics/multiplayer"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
)

const lobbyID multiplayerdomain.LobbyID = 9001

var baseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx     context.Context
	Service multiplayerservice.Service
	Logger  *slog.Logger
}

// SetupTestMultiplayerService resets shared state and builds a service that
// publishes on the real event bus.
func SetupTestMultiplayerService(t *testing.T) TestDeps {
	t.Helper()
	require.NoError(t, testEnv.Reset(multiplayer.StreamName))

	ctx := testEnv.Ctx
	require.NoError(t, testEnv.EventBus.CreateStream(ctx, multiplayer.StreamName, "multiplayer.>"))

	logger := slog.New(slog.DiscardHandler)
	tracer := noop.NewTracerProvider().Tracer("test")
	publisher := multiplayerpublisher.NewPublisher(testEnv.EventBus, logger, tracer, rate.Inf, 1)

	service := multiplayerservice.NewMultiplayerService(
		testEnv.DBService.MultiplayerDB,
		publisher,
		logger,
		multiplayermetrics.NewNoop(),
		tracer,
		testEnv.DB,
	)

	return TestDeps{Ctx: ctx, Service: service, Logger: logger}
}

// createRunningGame stores a two-team game on one lobby and moves it in progress.
func createRunningGame(t *testing.T, deps TestDeps, lives int) multiplayerdomain.GameID {
	t.Helper()
	id, err := deps.Service.CreateGame(deps.Ctx, multiplayerservice.GameSetup{
		Name:      "Friday royale",
		TeamLives: lives,
		Teams: []multiplayerservice.TeamSetup{
			{Number: 1, Name: "Team A", Members: []multiplayerdomain.TeamMember{{PlayerID: "a1", Username: "alice"}}},
			{Number: 2, Name: "Team B", Members: []multiplayerdomain.TeamMember{{PlayerID: "b1", Username: "bob"}}},
		},
		LobbyIDs: []multiplayerdomain.LobbyID{lobbyID},
	})
	require.NoError(t, err)
	require.NoError(t, deps.Service.SetGameStatus(deps.Ctx, id, multiplayerdomain.GameStatusInProgress))
	return id
}

// matchAt builds a finished match where alice scores a and bob scores b.
func matchAt(id int64, beatmap string, minute int, a, b int64) multiplayerdomain.RealMatch {
	end := baseTime.Add(time.Duration(minute) * time.Minute)
	start := end.Add(-time.Minute)
	return multiplayerdomain.RealMatch{
		ID:                multiplayerdomain.MatchID(id),
		LobbyID:           lobbyID,
		BeatmapID:         beatmap,
		SameBeatmapNumber: 1,
		StartTime:         &start,
		EndTime:           &end,
		Scores: []multiplayerdomain.PlayerScore{
			{PlayerID: "a1", Username: "alice", Score: a, Passed: true},
			{PlayerID: "b1", Username: "bob", Score: b, Passed: true},
		},
	}
}
