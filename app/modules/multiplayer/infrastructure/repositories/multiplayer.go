package multiplayerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a game is not found.
	ErrNotFound = errors.New("game not found")
	// ErrMatchOwnership is returned when a match id is already stored for another
	// game or lobby.
	ErrMatchOwnership = errors.New("match belongs to another game or lobby")
	// ErrLobbyInUse is returned when a lobby is already attached to another game.
	ErrLobbyInUse = errors.New("lobby belongs to another game")
	// ErrLobbyNotFound is returned when a lobby is not an active lobby of the game.
	ErrLobbyNotFound = errors.New("lobby not found")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new multiplayer repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateGame inserts a game with its teams, members and lobbies.
func (r *Impl) CreateGame(ctx context.Context, db bun.IDB, game *Game) error {
	db = r.resolveDB(db)
	if game.MessageTargets == nil {
		game.MessageTargets = []multiplayerdomain.MessageTarget{}
	}
	if _, err := db.NewInsert().Model(game).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	for _, team := range game.Teams {
		team.GameID = game.ID
		if _, err := db.NewInsert().Model(team).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert team %d: %w", team.Number, err)
		}
		for _, m := range team.Members {
			m.TeamID = team.ID
		}
		if len(team.Members) > 0 {
			if _, err := db.NewInsert().Model(&team.Members).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert members of team %d: %w", team.Number, err)
			}
		}
	}

	for _, l := range game.Lobbies {
		l.GameID = game.ID
	}
	if len(game.Lobbies) > 0 {
		if _, err := db.NewInsert().Model(&game.Lobbies).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert lobbies: %w", err)
		}
	}
	return nil
}

// GetGame loads a game with teams, members and lobbies.
func (r *Impl) GetGame(ctx context.Context, db bun.IDB, gameID int64) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Relation("Teams", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("t.number ASC")
		}).
		Relation("Teams.Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tm.player_id ASC")
		}).
		Relation("Lobbies", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("l.id ASC")
		}).
		Where("g.id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListGameIDsByStatus returns ids of games in any of the given statuses.
func (r *Impl) ListGameIDsByStatus(ctx context.Context, db bun.IDB, statuses ...string) ([]int64, error) {
	db = r.resolveDB(db)
	var ids []int64
	err := db.NewSelect().
		Model((*Game)(nil)).
		Column("id").
		Where("status IN (?)", bun.In(statuses)).
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by status: %w", err)
	}
	return ids, nil
}

// UpdateStatus sets a game's status.
func (r *Impl) UpdateStatus(ctx context.Context, db bun.IDB, gameID int64, status string) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Game)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	return requireRow(result)
}

// UpdateMessageTargets replaces a game's message targets.
func (r *Impl) UpdateMessageTargets(ctx context.Context, db bun.IDB, gameID int64, targets []multiplayerdomain.MessageTarget) error {
	db = r.resolveDB(db)
	if targets == nil {
		targets = []multiplayerdomain.MessageTarget{}
	}
	game := &Game{ID: gameID, MessageTargets: targets, UpdatedAt: time.Now()}
	result, err := db.NewUpdate().
		Model(game).
		Column("message_targets", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update message targets: %w", err)
	}
	return requireRow(result)
}

// AddLobby attaches a lobby to a game, restoring it when it was removed from
// the same game earlier.
func (r *Impl) AddLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error {
	db = r.resolveDB(db)
	lobby := &Lobby{ID: lobbyID, GameID: gameID}
	result, err := db.NewInsert().
		Model(lobby).
		On("CONFLICT (id) DO UPDATE").
		Set("removed_at = NULL").
		Where("l.game_id = EXCLUDED.game_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add lobby: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrLobbyInUse
	}
	return nil
}

// RemoveLobby marks an active lobby of a game as removed.
func (r *Impl) RemoveLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Lobby)(nil)).
		Set("removed_at = ?", time.Now()).
		Where("id = ?", lobbyID).
		Where("game_id = ?", gameID).
		Where("removed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove lobby: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrLobbyNotFound
	}
	return nil
}

// UpsertMatch stores a lobby match, replacing its scores and times when it already
// exists for the same game and lobby. A stored copy under another game or lobby
// is left untouched and ErrMatchOwnership is returned.
func (r *Impl) UpsertMatch(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)
	if match.Scores == nil {
		match.Scores = []multiplayerdomain.PlayerScore{}
	}
	result, err := db.NewInsert().
		Model(match).
		On("CONFLICT (id) DO UPDATE").
		Set("beatmap_id = EXCLUDED.beatmap_id").
		Set("same_beatmap_number = EXCLUDED.same_beatmap_number").
		Set("start_time = EXCLUDED.start_time").
		Set("end_time = EXCLUDED.end_time").
		Set("scores = EXCLUDED.scores").
		Where("m.game_id = EXCLUDED.game_id AND m.lobby_id = EXCLUDED.lobby_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrMatchOwnership
	}
	return nil
}

// ListMatches returns every match recorded for a game.
func (r *Impl) ListMatches(ctx context.Context, db bun.IDB, gameID int64) ([]Match, error) {
	db = r.resolveDB(db)
	var matches []Match
	err := db.NewSelect().
		Model(&matches).
		Where("game_id = ?", gameID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// ListReported returns the reported history of a game in report order.
func (r *Impl) ListReported(ctx context.Context, db bun.IDB, gameID int64) ([]ReportedItem, error) {
	db = r.resolveDB(db)
	var items []ReportedItem
	err := db.NewSelect().
		Model(&items).
		Where("game_id = ?", gameID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reported items: %w", err)
	}
	return items, nil
}

// AppendReported inserts reported items, skipping identities already stored.
func (r *Impl) AppendReported(ctx context.Context, db bun.IDB, items []ReportedItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	result, err := db.NewInsert().
		Model(&items).
		On("CONFLICT (game_id, report_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to append reported items: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// LockGame takes a transaction-scoped advisory lock on the game.
func (r *Impl) LockGame(ctx context.Context, db bun.IDB, gameID int64) error {
	db = r.resolveDB(db)
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(?)", gameID); err != nil {
		return fmt.Errorf("failed to lock game: %w", err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
