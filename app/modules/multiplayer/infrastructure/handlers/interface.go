package multiplayerhandlers

import (
	"context"

	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
)

// Handlers defines the multiplayer event handlers.
type Handlers interface {
	// --- REPORTING ---

	// HandleResultsReportRequested runs a report pass over a game.
	HandleResultsReportRequested(ctx context.Context, payload *multiplayerevents.ResultsReportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleMatchRecorded stores a finished match and requests a report pass.
	HandleMatchRecorded(ctx context.Context, payload *multiplayerevents.MatchRecordedPayloadV1) ([]handlerwrapper.Result, error)

	// --- ADMIN ---

	// HandleMessageTargetsUpdateRequested changes where a game's reportables go.
	HandleMessageTargetsUpdateRequested(ctx context.Context, payload *multiplayerevents.MessageTargetsUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleGameStatusUpdateRequested moves a game to a new status.
	HandleGameStatusUpdateRequested(ctx context.Context, payload *multiplayerevents.GameStatusUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleLobbyAddRequested attaches a lobby to a game.
	HandleLobbyAddRequested(ctx context.Context, payload *multiplayerevents.LobbyChangeRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleLobbyRemoveRequested stops waiting for a lobby of a game.
	HandleLobbyRemoveRequested(ctx context.Context, payload *multiplayerevents.LobbyChangeRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// --- REQUEST-REPLY ---

	// HandleStandingRequested replies with the current standing of a game.
	HandleStandingRequested(ctx context.Context, payload *multiplayerevents.StandingRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
