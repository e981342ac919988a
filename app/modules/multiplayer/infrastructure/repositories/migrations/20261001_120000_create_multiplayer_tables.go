package multiplayermigrations

import (
	"context"
	"fmt"

	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating multiplayer tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*multiplayerdb.Game)(nil),
				(*multiplayerdb.Team)(nil),
				(*multiplayerdb.TeamMember)(nil),
				(*multiplayerdb.Lobby)(nil),
				(*multiplayerdb.Match)(nil),
				(*multiplayerdb.ReportedItem)(nil),
			}
			for _, model := range models {
				if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", model, err)
				}
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE multiplayer_teams
					ADD CONSTRAINT fk_multiplayer_teams_game
					FOREIGN KEY (game_id) REFERENCES multiplayer_games(id) ON DELETE CASCADE;
				ALTER TABLE multiplayer_team_members
					ADD CONSTRAINT fk_multiplayer_team_members_team
					FOREIGN KEY (team_id) REFERENCES multiplayer_teams(id) ON DELETE CASCADE;
				ALTER TABLE multiplayer_lobbies
					ADD CONSTRAINT fk_multiplayer_lobbies_game
					FOREIGN KEY (game_id) REFERENCES multiplayer_games(id) ON DELETE CASCADE;
				ALTER TABLE multiplayer_matches
					ADD CONSTRAINT fk_multiplayer_matches_lobby
					FOREIGN KEY (lobby_id) REFERENCES multiplayer_lobbies(id) ON DELETE CASCADE;
				ALTER TABLE multiplayer_reported_items
					ADD CONSTRAINT fk_multiplayer_reported_items_game
					FOREIGN KEY (game_id) REFERENCES multiplayer_games(id) ON DELETE CASCADE;
			`); err != nil {
				return fmt.Errorf("failed to add foreign keys: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_multiplayer_teams_game_number ON multiplayer_teams(game_id, number);
				CREATE INDEX IF NOT EXISTS idx_multiplayer_games_status ON multiplayer_games(status);
				CREATE INDEX IF NOT EXISTS idx_multiplayer_matches_game ON multiplayer_matches(game_id);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_multiplayer_reported_items_key ON multiplayer_reported_items(game_id, report_key);
			`); err != nil {
				return fmt.Errorf("failed to create indexes: %w", err)
			}

			fmt.Println("Multiplayer tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping multiplayer tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS multiplayer_reported_items;
				DROP TABLE IF EXISTS multiplayer_matches;
				DROP TABLE IF EXISTS multiplayer_lobbies;
				DROP TABLE IF EXISTS multiplayer_team_members;
				DROP TABLE IF EXISTS multiplayer_teams;
				DROP TABLE IF EXISTS multiplayer_games;
			`); err != nil {
				return fmt.Errorf("failed to drop multiplayer tables: %w", err)
			}
			return nil
		})
	})
}
