package multiplayerdomain

import "maps"

// RoundOutcome records what happened in one round. TiedScore means no team lost a life.
type RoundOutcome struct {
	LosingTeamID TeamID
	TiedScore    bool
}

// LosingTeamsMap maps VirtualMatchKey.String() to the outcome of that round.
type LosingTeamsMap map[string]RoundOutcome

// TeamStates is an immutable snapshot of every team's lives.
// Operations that change lives return a new value.
type TeamStates struct {
	starting int
	order    []TeamID
	lives    map[TeamID]int
}

// NewTeamStates starts every team of the game with the configured lives.
// A non-positive configuration is treated as one life.
func NewTeamStates(game Game) TeamStates {
	starting := max(game.TeamLives, 1)
	s := TeamStates{
		starting: starting,
		order:    make([]TeamID, 0, len(game.Teams)),
		lives:    make(map[TeamID]int, len(game.Teams)),
	}
	for _, t := range game.Teams {
		s.order = append(s.order, t.ID)
		s.lives[t.ID] = starting
	}
	return s
}

// StartingLives is the number of lives each team started with.
func (s TeamStates) StartingLives() int { return s.starting }

// Lives returns a team's current lives; unknown teams have none.
func (s TeamStates) Lives(id TeamID) int { return s.lives[id] }

// Alive reports whether the team still has lives.
func (s TeamStates) Alive(id TeamID) bool { return s.lives[id] > 0 }

// AliveCount returns the number of teams with lives left.
func (s TeamStates) AliveCount() int {
	n := 0
	for _, id := range s.order {
		if s.lives[id] > 0 {
			n++
		}
	}
	return n
}

// AliveTeamIDs returns alive team ids in game order.
func (s TeamStates) AliveTeamIDs() []TeamID {
	var ids []TeamID
	for _, id := range s.order {
		if s.lives[id] > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// AliveTeams filters teams down to those still alive.
func (s TeamStates) AliveTeams(teams []Team) []Team {
	var out []Team
	for _, t := range teams {
		if s.Alive(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// LivesMap returns a copy of the lives per team.
func (s TeamStates) LivesMap() map[TeamID]int {
	return maps.Clone(s.lives)
}

// withLifeLost returns a copy with one life removed from the team, never below zero.
func (s TeamStates) withLifeLost(id TeamID) TeamStates {
	next := TeamStates{starting: s.starting, order: s.order, lives: maps.Clone(s.lives)}
	if next.lives[id] > 0 {
		next.lives[id]--
	}
	return next
}

// RoundState is the result of applying one round to the team states.
type RoundState struct {
	Key VirtualMatchKey
	// Outcome is nil when the round produced no outcome or was not tracked.
	Outcome *RoundOutcome
	// Tracked is false once fewer than two teams were alive before the round.
	Tracked bool
	Before  TeamStates
	After   TeamStates
}

// LostLife returns the team that lost a life in this round.
func (r RoundState) LostLife() (TeamID, bool) {
	if r.Outcome == nil || r.Outcome.TiedScore {
		return 0, false
	}
	return r.Outcome.LosingTeamID, true
}

// EliminatedTeam returns the team eliminated by this round.
func (r RoundState) EliminatedTeam() (TeamID, bool) {
	id, ok := r.LostLife()
	if !ok || r.After.Alive(id) {
		return 0, false
	}
	return id, true
}

// Concluded reports whether at most one team is alive after this round.
func (r RoundState) Concluded() bool {
	return r.After.AliveCount() <= 1
}

// EliminationResult is the outcome of walking every round of a game in order.
type EliminationResult struct {
	Outcomes LosingTeamsMap
	Rounds   []RoundState
	// Halted is set once fewer than two teams remain; HaltedAfter names the round
	// that caused it, nil when the game never had two alive teams.
	Halted      bool
	HaltedAfter *VirtualMatchKey
	Final       TeamStates
}

// RoundFor returns the state recorded for a virtual match key.
func (r EliminationResult) RoundFor(key VirtualMatchKey) (RoundState, bool) {
	for _, rs := range r.Rounds {
		if rs.Key == key {
			return rs, true
		}
	}
	return RoundState{}, false
}

// RunElimination applies life loss over virtual matches given in round order.
// It is a pure fold: the same ordered input always yields the same result.
func RunElimination(game Game, sorted []VirtualMatch) EliminationResult {
	states := NewTeamStates(game)
	result := EliminationResult{
		Outcomes: make(LosingTeamsMap),
		Rounds:   make([]RoundState, 0, len(sorted)),
	}
	if states.AliveCount() < 2 {
		result.Halted = true
	}

	for _, vm := range sorted {
		round := RoundState{Key: vm.Key, Before: states, After: states}

		if states.AliveCount() < 2 {
			result.Rounds = append(result.Rounds, round)
			continue
		}
		round.Tracked = true

		lowest := LowestScoringTeamIDs(vm, states.AliveTeams(game.Teams), game.CountFailedScores)
		switch {
		case len(lowest) == 0:
			// no comparable scores; the round has no outcome
		case len(lowest) > 1:
			outcome := RoundOutcome{TiedScore: true}
			round.Outcome = &outcome
			result.Outcomes[vm.Key.String()] = outcome
		default:
			outcome := RoundOutcome{LosingTeamID: lowest[0]}
			round.Outcome = &outcome
			result.Outcomes[vm.Key.String()] = outcome
			states = states.withLifeLost(lowest[0])
			round.After = states
		}

		if !result.Halted && states.AliveCount() < 2 {
			result.Halted = true
			key := vm.Key
			result.HaltedAfter = &key
		}
		result.Rounds = append(result.Rounds, round)
	}

	result.Final = states
	return result
}

// TargetStatus is the state of the game as of one target round.
type TargetStatus struct {
	LosingTeams LosingTeamsMap
	// Outcome is the target round's outcome, nil when it had none.
	Outcome *RoundOutcome
	// Lives is each team's life count immediately after the target round.
	Lives map[TeamID]int
}

// TeamStatusForVirtualMatch replays every round up to and including target and
// reports the target round's outcome and the lives that follow it.
func TeamStatusForVirtualMatch(game Game, target VirtualMatch, all []VirtualMatch) TargetStatus {
	result := RunElimination(game, SortedBefore(all, target))
	status := TargetStatus{
		LosingTeams: result.Outcomes,
		Lives:       result.Final.LivesMap(),
	}
	if outcome, ok := result.Outcomes[target.Key.String()]; ok {
		status.Outcome = &outcome
	}
	return status
}

// CurrentTeamLives replays recorded losses from the starting lives.
func CurrentTeamLives(game Game, outcomes LosingTeamsMap) map[TeamID]int {
	states := NewTeamStates(game)
	for _, o := range outcomes {
		if o.TiedScore {
			continue
		}
		if _, ok := states.lives[o.LosingTeamID]; !ok {
			continue
		}
		states = states.withLifeLost(o.LosingTeamID)
	}
	return states.LivesMap()
}
