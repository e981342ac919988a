package multiplayerdomain

import (
	"cmp"
	"slices"
)

// PlayerResult is a team member's contribution to a team score.
type PlayerResult struct {
	PlayerID string  `json:"playerId"`
	Username string  `json:"username"`
	Score    int64   `json:"score"`
	Counted  bool    `json:"counted"`
	Grade    string  `json:"grade,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
	// HighestInTeam marks the best counted score of the team in this round.
	HighestInTeam bool `json:"highestInTeam"`
}

// TeamScore is a team's aggregate score for one virtual match.
type TeamScore struct {
	TeamID TeamID
	Score  int64
	// Submitted is false when no member of the team has a counted score.
	Submitted bool
	Players   []PlayerResult
}

// countsTowardsTeam reports whether a score is included in the team aggregate.
func countsTowardsTeam(s PlayerScore, countFailedScores bool) bool {
	if s.Ignored {
		return false
	}
	return s.Passed || countFailedScores
}

// CalculateTeamScores aggregates member scores of a virtual match per team.
// Ignored scores never count; failed scores count only when countFailedScores is set.
// The result follows the order of teams.
func CalculateTeamScores(vm VirtualMatch, teams []Team, countFailedScores bool) []TeamScore {
	out := make([]TeamScore, 0, len(teams))
	for _, team := range teams {
		ts := TeamScore{TeamID: team.ID}
		highest := -1
		for _, m := range vm.Matches {
			for _, s := range m.Scores {
				if !team.HasMember(s.PlayerID) {
					continue
				}
				counted := countsTowardsTeam(s, countFailedScores)
				pr := PlayerResult{
					PlayerID: s.PlayerID,
					Username: s.Username,
					Score:    s.Score,
					Counted:  counted,
					Grade:    s.Grade,
					Accuracy: s.Accuracy,
				}
				if counted {
					ts.Score += s.Score
					ts.Submitted = true
					if highest < 0 || s.Score > ts.Players[highest].Score {
						highest = len(ts.Players)
					}
				}
				ts.Players = append(ts.Players, pr)
			}
		}
		if highest >= 0 {
			ts.Players[highest].HighestInTeam = true
		}
		out = append(out, ts)
	}
	return out
}

// LowestScoringTeamIDs returns the alive team(s) with the lowest aggregate score.
// More than one id means a tie. It returns nil when no alive team has a counted
// score for the round; callers treat that as "no outcome", not as an error.
// Alive teams that submitted nothing score zero.
func LowestScoringTeamIDs(vm VirtualMatch, aliveTeams []Team, countFailedScores bool) []TeamID {
	scores := CalculateTeamScores(vm, aliveTeams, countFailedScores)
	return lowestOf(scores)
}

func lowestOf(scores []TeamScore) []TeamID {
	anySubmitted := slices.ContainsFunc(scores, func(ts TeamScore) bool { return ts.Submitted })
	if !anySubmitted {
		return nil
	}

	lowest := scores[0].Score
	for _, ts := range scores[1:] {
		lowest = min(lowest, ts.Score)
	}

	var ids []TeamID
	for _, ts := range scores {
		if ts.Score == lowest {
			ids = append(ids, ts.TeamID)
		}
	}
	slices.SortFunc(ids, cmp.Compare[TeamID])
	return ids
}

// HighestScoringTeamIDs returns the team(s) sharing the highest submitted score.
func HighestScoringTeamIDs(scores []TeamScore) []TeamID {
	var (
		ids     []TeamID
		highest int64
		found   bool
	)
	for _, ts := range scores {
		if !ts.Submitted {
			continue
		}
		switch {
		case !found || ts.Score > highest:
			highest, found = ts.Score, true
			ids = []TeamID{ts.TeamID}
		case ts.Score == highest:
			ids = append(ids, ts.TeamID)
		}
	}
	slices.SortFunc(ids, cmp.Compare[TeamID])
	return ids
}
