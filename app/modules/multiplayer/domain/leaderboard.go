package multiplayerdomain

import (
	"cmp"
	"slices"
	"time"
)

// LeaderboardSubTypeBattleRoyale is the only leaderboard subtype produced.
const LeaderboardSubTypeBattleRoyale = "battle_royale"

// LeaderboardPosition is a team's rank this round and in the previous leaderboard.
type LeaderboardPosition struct {
	Current  int  `json:"currentPosition"`
	Previous int  `json:"previousPosition"`
	Same     bool `json:"samePosition"`
	Gained   bool `json:"gainedPosition"`
	Lost     bool `json:"lostPosition"`
}

// LeaderboardLives is the life bar of a team.
type LeaderboardLives struct {
	Current  int `json:"currentLives"`
	Starting int `json:"startingLives"`
}

// LeaderboardTeamScore is a team's score and the teams it tied with.
type LeaderboardTeamScore struct {
	Score               int64 `json:"teamScore"`
	TiedWithTeamNumbers []int `json:"tiedWithTeamNumbers"`
}

// EventIcon marks the most significant thing that happened to a team this round.
type EventIcon struct {
	Type  GameEventType `json:"eventType"`
	Emoji string        `json:"eventEmoji"`
}

// LeaderboardLine is one team's row.
type LeaderboardLine struct {
	TeamID     TeamID               `json:"teamId"`
	TeamNumber int                  `json:"teamNumber"`
	TeamName   string               `json:"teamName"`
	Players    []PlayerResult       `json:"players"`
	Alive      bool                 `json:"alive"`
	Position   LeaderboardPosition  `json:"position"`
	Lives      LeaderboardLives     `json:"lives"`
	TeamScore  LeaderboardTeamScore `json:"teamScore"`
	EventIcon  *EventIcon           `json:"eventIcon,omitempty"`
}

// Leaderboard is the standing of every team after one round.
type Leaderboard struct {
	GameID               GameID            `json:"gameId"`
	BeatmapID            string            `json:"beatmapId"`
	SameBeatmapNumber    int               `json:"sameBeatmapNumber"`
	RoundNumber          int               `json:"roundNumber"`
	LeaderboardEventTime time.Time         `json:"leaderboardEventTime"`
	Lines                []LeaderboardLine `json:"leaderboardLines"`
}

func (Leaderboard) reportable() {}

// Key returns the round the leaderboard was built for.
func (l Leaderboard) Key() VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: l.BeatmapID, SameBeatmapNumber: l.SameBeatmapNumber}
}

// AliveTeamCount returns the number of teams still alive on this leaderboard.
func (l Leaderboard) AliveTeamCount() int {
	n := 0
	for _, line := range l.Lines {
		if line.Alive {
			n++
		}
	}
	return n
}

// IsFinal reports whether at most one team is alive, which concludes the game.
func (l Leaderboard) IsFinal() bool {
	return l.AliveTeamCount() <= 1
}

// LineFor returns the line of a team.
func (l Leaderboard) LineFor(id TeamID) (LeaderboardLine, bool) {
	for _, line := range l.Lines {
		if line.TeamID == id {
			return line, true
		}
	}
	return LeaderboardLine{}, false
}

// LeaderboardInput is everything needed to build a leaderboard for one round.
type LeaderboardInput struct {
	Game         Game
	VirtualMatch VirtualMatch
	RoundNumber  int
	// Scores are the team scores of the round; they are calculated when nil.
	Scores []TeamScore
	// Previous is the prior round's leaderboard, nil for the first round.
	Previous *Leaderboard
	Round    RoundState
}

// BuildLeaderboard ranks every team of the game after a round. Alive teams rank
// ahead of eliminated ones; within each group a higher score ranks higher and
// equal scores share a rank. Lines are ordered by rank then team number.
func BuildLeaderboard(in LeaderboardInput) Leaderboard {
	scores := in.Scores
	if scores == nil {
		scores = CalculateTeamScores(in.VirtualMatch, in.Game.Teams, in.Game.CountFailedScores)
	}
	byTeam := make(map[TeamID]TeamScore, len(scores))
	for _, s := range scores {
		byTeam[s.TeamID] = s
	}

	var participantScores []TeamScore
	for _, t := range in.Round.Before.AliveTeams(in.Game.Teams) {
		participantScores = append(participantScores, byTeam[t.ID])
	}
	highest := HighestScoringTeamIDs(participantScores)
	lostLife, hasLoser := in.Round.LostLife()

	lines := make([]LeaderboardLine, 0, len(in.Game.Teams))
	for _, team := range in.Game.Teams {
		ts := byTeam[team.ID]
		line := LeaderboardLine{
			TeamID:     team.ID,
			TeamNumber: team.Number,
			TeamName:   team.Name,
			Players:    ts.Players,
			Alive:      in.Round.After.Alive(team.ID),
			Lives: LeaderboardLives{
				Current:  in.Round.After.Lives(team.ID),
				Starting: in.Round.After.StartingLives(),
			},
			TeamScore: LeaderboardTeamScore{Score: ts.Score, TiedWithTeamNumbers: []int{}},
		}

		switch {
		case !line.Alive:
			line.EventIcon = newEventIcon(EventTeamEliminated)
		case hasLoser && lostLife == team.ID:
			line.EventIcon = newEventIcon(EventTeamLostLife)
		case slices.Contains(highest, team.ID):
			line.EventIcon = newEventIcon(EventTeamScoredHighest)
		}
		lines = append(lines, line)
	}

	markTies(lines, in.Round.Before)

	slices.SortStableFunc(lines, compareLines)
	for i := range lines {
		lines[i].Position.Current = i + 1
		if i > 0 && lines[i].Alive == lines[i-1].Alive && lines[i].TeamScore.Score == lines[i-1].TeamScore.Score {
			lines[i].Position.Current = lines[i-1].Position.Current
		}
	}

	for i := range lines {
		pos := &lines[i].Position
		pos.Previous = pos.Current
		if in.Previous != nil {
			if prev, ok := in.Previous.LineFor(lines[i].TeamID); ok {
				pos.Previous = prev.Position.Current
			}
		}
		pos.Same = pos.Current == pos.Previous
		pos.Gained = pos.Current < pos.Previous
		pos.Lost = pos.Current > pos.Previous
	}

	return Leaderboard{
		GameID:               in.Game.ID,
		BeatmapID:            in.VirtualMatch.Key.BeatmapID,
		SameBeatmapNumber:    in.VirtualMatch.Key.SameBeatmapNumber,
		RoundNumber:          in.RoundNumber,
		LeaderboardEventTime: in.VirtualMatch.Time(),
		Lines:                lines,
	}
}

func newEventIcon(t GameEventType) *EventIcon {
	return &EventIcon{Type: t, Emoji: t.Emoji()}
}

// markTies fills TiedWithTeamNumbers among teams that played the round.
func markTies(lines []LeaderboardLine, before TeamStates) {
	for i := range lines {
		if !before.Alive(lines[i].TeamID) {
			continue
		}
		for j := range lines {
			if i == j || !before.Alive(lines[j].TeamID) {
				continue
			}
			if lines[i].TeamScore.Score == lines[j].TeamScore.Score {
				lines[i].TeamScore.TiedWithTeamNumbers = append(lines[i].TeamScore.TiedWithTeamNumbers, lines[j].TeamNumber)
			}
		}
		slices.Sort(lines[i].TeamScore.TiedWithTeamNumbers)
	}
}

func compareLines(a, b LeaderboardLine) int {
	if a.Alive != b.Alive {
		if a.Alive {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.TeamScore.Score, a.TeamScore.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.TeamNumber, b.TeamNumber)
}
