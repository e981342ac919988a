package multiplayerdb

import (
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/uptrace/bun"
)

// Game is a battle royale game row with its teams and lobbies.
type Game struct {
	bun.BaseModel `bun:"table:multiplayer_games,alias:g"`

	ID                int64                             `bun:"id,pk,autoincrement"`
	Name              string                            `bun:"name,notnull"`
	Status            string                            `bun:"status,notnull"`
	TeamLives         int                               `bun:"team_lives,notnull"`
	CountFailedScores bool                              `bun:"count_failed_scores,notnull"`
	MessageTargets    []multiplayerdomain.MessageTarget `bun:"message_targets,type:jsonb,notnull"`
	CreatedAt         time.Time                         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time                         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Teams   []*Team  `bun:"rel:has-many,join:id=game_id"`
	Lobbies []*Lobby `bun:"rel:has-many,join:id=game_id"`
}

// Team is a team of a game.
type Team struct {
	bun.BaseModel `bun:"table:multiplayer_teams,alias:t"`

	ID     int64  `bun:"id,pk,autoincrement"`
	GameID int64  `bun:"game_id,notnull"`
	Number int    `bun:"number,notnull"`
	Name   string `bun:"name,notnull"`

	Members []*TeamMember `bun:"rel:has-many,join:id=team_id"`
}

// TeamMember registers a player to a team.
type TeamMember struct {
	bun.BaseModel `bun:"table:multiplayer_team_members,alias:tm"`

	TeamID   int64  `bun:"team_id,pk"`
	PlayerID string `bun:"player_id,pk"`
	Username string `bun:"username,notnull"`
}

// Lobby is a multiplayer lobby attached to a game. The id is the lobby's own id.
// A removed lobby keeps its recorded matches but is no longer waited for.
type Lobby struct {
	bun.BaseModel `bun:"table:multiplayer_lobbies,alias:l"`

	ID        int64      `bun:"id,pk"`
	GameID    int64      `bun:"game_id,notnull"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	RemovedAt *time.Time `bun:"removed_at"`
}

// Active reports whether the lobby still takes part in the game.
func (l *Lobby) Active() bool {
	return l.RemovedAt == nil
}

// Match is one lobby's play of a beatmap with its scores.
type Match struct {
	bun.BaseModel `bun:"table:multiplayer_matches,alias:m"`

	ID                int64                           `bun:"id,pk"`
	GameID            int64                           `bun:"game_id,notnull"`
	LobbyID           int64                           `bun:"lobby_id,notnull"`
	BeatmapID         string                          `bun:"beatmap_id,notnull"`
	SameBeatmapNumber int                             `bun:"same_beatmap_number,notnull"`
	StartTime         *time.Time                      `bun:"start_time"`
	EndTime           *time.Time                      `bun:"end_time"`
	Scores            []multiplayerdomain.PlayerScore `bun:"scores,type:jsonb,notnull"`
	CreatedAt         time.Time                       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ReportedItem is a reportable already published for a game. ReportKey is the
// encoded identity key and is unique per game.
type ReportedItem struct {
	bun.BaseModel `bun:"table:multiplayer_reported_items,alias:r"`

	ID         int64                               `bun:"id,pk,autoincrement"`
	GameID     int64                               `bun:"game_id,notnull"`
	ReportKey  string                              `bun:"report_key,notnull"`
	Context    multiplayerdomain.ReportableContext `bun:"context,type:jsonb,notnull"`
	ReportedAt time.Time                           `bun:"reported_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row and its loaded relations into the game aggregate.
func (g *Game) ToDomain(reported []ReportedItem) multiplayerdomain.Game {
	game := multiplayerdomain.Game{
		ID:                multiplayerdomain.GameID(g.ID),
		Status:            multiplayerdomain.ParseGameStatus(g.Status),
		TeamLives:         g.TeamLives,
		CountFailedScores: g.CountFailedScores,
		MessageTargets:    g.MessageTargets,
	}
	for _, t := range g.Teams {
		team := multiplayerdomain.Team{
			ID:     multiplayerdomain.TeamID(t.ID),
			Number: t.Number,
			Name:   t.Name,
		}
		for _, m := range t.Members {
			team.Members = append(team.Members, multiplayerdomain.TeamMember{PlayerID: m.PlayerID, Username: m.Username})
		}
		game.Teams = append(game.Teams, team)
	}
	for _, l := range g.Lobbies {
		if l.Active() {
			game.LobbyIDs = append(game.LobbyIDs, multiplayerdomain.LobbyID(l.ID))
		}
	}
	for _, r := range reported {
		game.MatchesReported = append(game.MatchesReported, multiplayerdomain.ReportedItem{
			ID:         r.ID,
			Context:    r.Context,
			ReportedAt: r.ReportedAt,
		})
	}
	return game
}

// ToDomain converts a match row.
func (m *Match) ToDomain() multiplayerdomain.RealMatch {
	return multiplayerdomain.RealMatch{
		ID:                multiplayerdomain.MatchID(m.ID),
		LobbyID:           multiplayerdomain.LobbyID(m.LobbyID),
		BeatmapID:         m.BeatmapID,
		SameBeatmapNumber: m.SameBeatmapNumber,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		Scores:            m.Scores,
	}
}
