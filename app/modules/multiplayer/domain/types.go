package multiplayerdomain

import (
	"fmt"
	"time"
)

// GameID identifies a battle royale game.
type GameID int64

// TeamID identifies a team taking part in a game.
type TeamID int64

// LobbyID identifies one multiplayer lobby of a game.
type LobbyID int64

// MatchID identifies one recorded play of a beatmap in a lobby.
type MatchID int64

func (id GameID) String() string { return fmt.Sprintf("%d", int64(id)) }

// PlayerScore is a single player's result in a real match.
type PlayerScore struct {
	PlayerID string  `json:"playerId"`
	Username string  `json:"username"`
	Score    int64   `json:"score"`
	Passed   bool    `json:"passed"`
	Ignored  bool    `json:"ignored"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Grade    string  `json:"grade,omitempty"`
}

// RealMatch is one lobby's played instance of a beatmap.
// StartTime and EndTime may be nil when the lobby did not report them.
type RealMatch struct {
	ID                MatchID       `json:"matchId"`
	LobbyID           LobbyID       `json:"lobbyId"`
	BeatmapID         string        `json:"beatmapId"`
	SameBeatmapNumber int           `json:"sameBeatmapNumber"`
	StartTime         *time.Time    `json:"startTime,omitempty"`
	EndTime           *time.Time    `json:"endTime,omitempty"`
	Scores            []PlayerScore `json:"scores"`
}

// TeamMember is a player registered to a team.
type TeamMember struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// Team is a stable team identity within a game. Lives are not stored here;
// they are derived round by round from Game.TeamLives.
type Team struct {
	ID      TeamID
	Number  int
	Name    string
	Members []TeamMember
}

// HasMember reports whether playerID belongs to the team.
func (t Team) HasMember(playerID string) bool {
	for _, m := range t.Members {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

// ReportedItem is a reportable that has already been published for a game.
type ReportedItem struct {
	ID         int64
	Context    ReportableContext
	ReportedAt time.Time
}

// Game is the aggregate root the reporter diffs against.
type Game struct {
	ID                GameID
	Status            GameStatus
	TeamLives         int
	CountFailedScores bool
	Teams             []Team
	LobbyIDs          []LobbyID
	MessageTargets    []MessageTarget
	MatchesReported   []ReportedItem
}

// TeamByID returns the team with the given id.
func (g *Game) TeamByID(id TeamID) (Team, bool) {
	for _, t := range g.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}
