package multiplayerdb

import (
	"context"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for multiplayer game persistence.
type Repository interface {
	// CreateGame inserts a game with its teams, members and lobbies.
	CreateGame(ctx context.Context, db bun.IDB, game *Game) error

	// GetGame loads a game with teams, members and lobbies.
	GetGame(ctx context.Context, db bun.IDB, gameID int64) (*Game, error)

	// ListGameIDsByStatus returns ids of games in any of the given statuses.
	ListGameIDsByStatus(ctx context.Context, db bun.IDB, statuses ...string) ([]int64, error)

	// UpdateStatus sets a game's status.
	UpdateStatus(ctx context.Context, db bun.IDB, gameID int64, status string) error

	// UpdateMessageTargets replaces a game's message targets.
	UpdateMessageTargets(ctx context.Context, db bun.IDB, gameID int64, targets []multiplayerdomain.MessageTarget) error

	// AddLobby attaches a lobby to a game, restoring it when it was removed from the same game.
	AddLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error

	// RemoveLobby marks an active lobby of a game as removed.
	RemoveLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error

	// UpsertMatch stores a lobby match, replacing its scores and times when it
	// already exists for the same game and lobby.
	UpsertMatch(ctx context.Context, db bun.IDB, match *Match) error

	// ListMatches returns every match recorded for a game.
	ListMatches(ctx context.Context, db bun.IDB, gameID int64) ([]Match, error)

	// ListReported returns the reported history of a game in report order.
	ListReported(ctx context.Context, db bun.IDB, gameID int64) ([]ReportedItem, error)

	// AppendReported inserts reported items, skipping identities already stored.
	AppendReported(ctx context.Context, db bun.IDB, items []ReportedItem) (int64, error)

	// LockGame takes a transaction-scoped advisory lock on the game.
	LockGame(ctx context.Context, db bun.IDB, gameID int64) error
}
