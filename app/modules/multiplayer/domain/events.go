package multiplayerdomain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GameEventType names a game event; it is the reportable subtype of events.
type GameEventType string

const (
	EventTeamLostLife      GameEventType = "team_lost_life"
	EventTeamEliminated    GameEventType = "team_eliminated"
	EventTeamsTied         GameEventType = "teams_tied"
	EventTeamScoredHighest GameEventType = "team_scored_highest"
	EventTeamWon           GameEventType = "team_won"
)

var gameEventEmoji = map[GameEventType]string{
	EventTeamLostLife:      "💥",
	EventTeamEliminated:    "💀",
	EventTeamsTied:         "👔",
	EventTeamScoredHighest: "⭐",
	EventTeamWon:           "🏆",
}

// Known reports whether the event type is one this package produces.
func (t GameEventType) Known() bool {
	_, ok := gameEventEmoji[t]
	return ok
}

// Emoji is the icon shown next to the event.
func (t GameEventType) Emoji() string { return gameEventEmoji[t] }

// GameEvent is something that happened to one or more teams in a round.
type GameEvent struct {
	Type              GameEventType `json:"type"`
	GameID            GameID        `json:"gameId"`
	TeamID            TeamID        `json:"teamId,omitempty"`
	TeamNumber        int           `json:"teamNumber,omitempty"`
	TeamIDs           []TeamID      `json:"teamIds,omitempty"`
	BeatmapID         string        `json:"beatmapId"`
	SameBeatmapNumber int           `json:"sameBeatmapNumber"`
	Time              time.Time     `json:"time"`
	Description       string        `json:"description"`
}

func (GameEvent) reportable() {}

// Key returns the round the event belongs to.
func (e GameEvent) Key() VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: e.BeatmapID, SameBeatmapNumber: e.SameBeatmapNumber}
}

// discriminant identifies the event within its type and round.
func (e GameEvent) discriminant() string {
	if e.Type == EventTeamsTied {
		ids := make([]string, 0, len(e.TeamIDs))
		for _, id := range e.TeamIDs {
			ids = append(ids, strconv.FormatInt(int64(id), 10))
		}
		return strings.Join(ids, ",")
	}
	return strconv.FormatInt(int64(e.TeamID), 10)
}

func newTeamEvent(typ GameEventType, game Game, team Team, vm VirtualMatch) GameEvent {
	e := GameEvent{
		Type:              typ,
		GameID:            game.ID,
		TeamID:            team.ID,
		TeamNumber:        team.Number,
		BeatmapID:         vm.Key.BeatmapID,
		SameBeatmapNumber: vm.Key.SameBeatmapNumber,
		Time:              vm.Time(),
	}
	name := teamLabel(team)
	switch typ {
	case EventTeamLostLife:
		e.Description = fmt.Sprintf("%s lost a life!", name)
	case EventTeamEliminated:
		e.Description = fmt.Sprintf("%s lost all their lives and was eliminated!", name)
	case EventTeamScoredHighest:
		e.Description = fmt.Sprintf("%s scored the highest!", name)
	case EventTeamWon:
		e.Description = fmt.Sprintf("%s won the game!", name)
	}
	return e
}

func newTiedEvent(game Game, teamIDs []TeamID, vm VirtualMatch) GameEvent {
	numbers := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		if t, ok := game.TeamByID(id); ok {
			numbers = append(numbers, strconv.Itoa(t.Number))
		}
	}
	return GameEvent{
		Type:              EventTeamsTied,
		GameID:            game.ID,
		TeamIDs:           teamIDs,
		BeatmapID:         vm.Key.BeatmapID,
		SameBeatmapNumber: vm.Key.SameBeatmapNumber,
		Time:              vm.Time(),
		Description:       fmt.Sprintf("Teams %s tied for the lowest score. No lives were lost.", strings.Join(numbers, ", ")),
	}
}

func teamLabel(t Team) string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("Team %d", t.Number)
}

// RoundEvents derives the events of one tracked round.
func RoundEvents(game Game, vm VirtualMatch, round RoundState) []GameEvent {
	if !round.Tracked || round.Outcome == nil {
		return nil
	}

	participants := round.Before.AliveTeams(game.Teams)
	scores := CalculateTeamScores(vm, participants, game.CountFailedScores)

	var events []GameEvent
	for _, id := range HighestScoringTeamIDs(scores) {
		if t, ok := game.TeamByID(id); ok {
			events = append(events, newTeamEvent(EventTeamScoredHighest, game, t, vm))
		}
	}

	if round.Outcome.TiedScore {
		tied := lowestOf(scores)
		events = append(events, newTiedEvent(game, tied, vm))
		return events
	}

	loser, _ := game.TeamByID(round.Outcome.LosingTeamID)
	events = append(events, newTeamEvent(EventTeamLostLife, game, loser, vm))
	if _, eliminated := round.EliminatedTeam(); eliminated {
		events = append(events, newTeamEvent(EventTeamEliminated, game, loser, vm))
	}

	if round.Concluded() {
		for _, id := range round.After.AliveTeamIDs() {
			if t, ok := game.TeamByID(id); ok {
				events = append(events, newTeamEvent(EventTeamWon, game, t, vm))
			}
		}
	}
	return events
}
