package multiplayerdomain

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMatchMissingBeatmap is returned for a recorded match without a beatmap id.
var ErrMatchMissingBeatmap = errors.New("match has no beatmap id")

// TeamStanding is a team's state after the last completed round.
type TeamStanding struct {
	TeamID        TeamID `json:"teamId"`
	Number        int    `json:"teamNumber"`
	Name          string `json:"teamName"`
	Lives         int    `json:"lives"`
	StartingLives int    `json:"startingLives"`
	Alive         bool   `json:"alive"`
	// EliminatedIn is the round that took the team's last life.
	EliminatedIn *VirtualMatchKey `json:"eliminatedIn,omitempty"`
}

// GameStanding summarises a game for status queries.
type GameStanding struct {
	GameID          GameID         `json:"gameId"`
	Status          GameStatus     `json:"status"`
	Teams           []TeamStanding `json:"teams"`
	AliveTeams      int            `json:"aliveTeams"`
	Winner          *TeamID        `json:"winner,omitempty"`
	Concluded       bool           `json:"concluded"`
	RoundsCompleted int            `json:"roundsCompleted"`
	RoundsPending   int            `json:"roundsPending"`
	Latest          *Leaderboard   `json:"latest,omitempty"`
}

// GameResults is the full computation of one pass over a game's matches.
type GameResults struct {
	GameID         GameID
	VirtualMatches []VirtualMatch
	// Completed is the number of leading virtual matches every lobby has played.
	Completed int
	// Settled is the number of leading rounds that count towards the result: the
	// completed rounds up to and including the one that decided the game.
	Settled     int
	Elimination EliminationResult
	Reports     []VirtualMatchReportData
	Standing    GameStanding
}

// Leaderboards returns every leaderboard of the pass in round order.
func (r GameResults) Leaderboards() []Leaderboard {
	var out []Leaderboard
	for _, d := range r.Reports {
		out = append(out, d.Leaderboards...)
	}
	return out
}

// BuildReportData computes events, messages and leaderboards for a game.
// Elimination runs over the leading rounds that every lobby of the game has
// played; the first round some lobby has not played and every round after it
// only produce lobby status messages until they complete. Once a round leaves
// at most one team alive, later rounds get no events or leaderboards and are
// left out of the standing.
func BuildReportData(game Game, matches []RealMatch) (GameResults, error) {
	for _, m := range matches {
		if m.BeatmapID == "" {
			return GameResults{}, fmt.Errorf("match %d: %w", m.ID, ErrMatchMissingBeatmap)
		}
	}

	vms := GroupVirtualMatches(AssignSameBeatmapNumbers(matches))

	completed := 0
	for completed < len(vms) && vms[completed].IsComplete(game.LobbyIDs) {
		completed++
	}

	elimination := RunElimination(game, vms[:completed])
	settled := completed
	if elimination.HaltedAfter != nil {
		settled = slices.IndexFunc(vms, func(vm VirtualMatch) bool {
			return vm.Key == *elimination.HaltedAfter
		}) + 1
	}

	results := GameResults{
		GameID:         game.ID,
		VirtualMatches: vms,
		Completed:      completed,
		Settled:        settled,
		Elimination:    elimination,
		Reports:        make([]VirtualMatchReportData, 0, len(vms)),
	}

	var previous *Leaderboard
	for i, vm := range vms {
		data := VirtualMatchReportData{
			Key:      vm.Key,
			Time:     vm.Time(),
			Messages: RoundMessages(game, vm),
		}
		if i < settled {
			round := elimination.Rounds[i]
			data.Events = RoundEvents(game, vm, round)
			lb := BuildLeaderboard(LeaderboardInput{
				Game:         game,
				VirtualMatch: vm,
				RoundNumber:  i + 1,
				Previous:     previous,
				Round:        round,
			})
			data.Leaderboards = []Leaderboard{lb}
			previous = &lb
		}
		results.Reports = append(results.Reports, data)
	}

	pending := len(vms) - completed
	if elimination.HaltedAfter != nil {
		pending = 0
	}
	results.Standing = buildStanding(game, elimination, settled, pending, previous)
	return results, nil
}

func buildStanding(game Game, elimination EliminationResult, settled, pending int, latest *Leaderboard) GameStanding {
	final := elimination.Final

	standing := GameStanding{
		GameID:          game.ID,
		Status:          game.Status,
		AliveTeams:      final.AliveCount(),
		RoundsCompleted: settled,
		RoundsPending:   pending,
		Latest:          latest,
	}
	standing.Concluded = len(game.Teams) > 1 && standing.AliveTeams <= 1

	eliminatedIn := make(map[TeamID]VirtualMatchKey)
	for _, r := range elimination.Rounds[:settled] {
		if id, ok := r.EliminatedTeam(); ok {
			eliminatedIn[id] = r.Key
		}
	}

	for _, t := range game.Teams {
		ts := TeamStanding{
			TeamID:        t.ID,
			Number:        t.Number,
			Name:          t.Name,
			Lives:         final.Lives(t.ID),
			StartingLives: final.StartingLives(),
			Alive:         final.Alive(t.ID),
		}
		if key, ok := eliminatedIn[t.ID]; ok {
			ts.EliminatedIn = &key
		}
		standing.Teams = append(standing.Teams, ts)
	}

	if standing.Concluded {
		if alive := final.AliveTeamIDs(); len(alive) == 1 {
			winner := alive[0]
			standing.Winner = &winner
		}
	}
	return standing
}
