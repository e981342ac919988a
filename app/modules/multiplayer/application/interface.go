package multiplayerservice

import (
	"context"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

// Service defines the multiplayer results operations.
type Service interface {
	// CreateGame stores a new game in the scheduled status.
	CreateGame(ctx context.Context, setup GameSetup) (multiplayerdomain.GameID, error)

	// RecordMatch stores a lobby's play of a beatmap, replacing an earlier copy of the same match.
	RecordMatch(ctx context.Context, gameID multiplayerdomain.GameID, match multiplayerdomain.RealMatch) error

	// ComputeResults loads a game and computes its results without side effects.
	ComputeResults(ctx context.Context, gameID multiplayerdomain.GameID) (*ResultsView, error)

	// ReportResults publishes every reportable not yet reported and records it.
	ReportResults(ctx context.Context, gameID multiplayerdomain.GameID, opts ReportOptions) (*ReportOutcome, error)

	// GetGameStanding returns the current standing of a game.
	GetGameStanding(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error)

	// ListReportableGames returns games whose results are still being reported.
	ListReportableGames(ctx context.Context) ([]multiplayerdomain.GameID, error)

	// UpdateMessageTargets applies an action to a game's message targets.
	UpdateMessageTargets(ctx context.Context, gameID multiplayerdomain.GameID, action multiplayerdomain.MessageTargetAction) ([]multiplayerdomain.MessageTarget, error)

	// SetGameStatus moves a game to status. Ending a completed game fails.
	SetGameStatus(ctx context.Context, gameID multiplayerdomain.GameID, status multiplayerdomain.GameStatus) error

	// AddLobby attaches a lobby to a game that has no recorded match yet.
	AddLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)

	// RemoveLobby stops waiting for a lobby. Its recorded matches still count.
	RemoveLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)
}
