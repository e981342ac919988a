package multiplayerdomain

import (
	"slices"
	"time"
)

// VirtualMatchReportData is everything computed for one round that may be reported.
type VirtualMatchReportData struct {
	Key          VirtualMatchKey
	Time         time.Time
	Events       []GameEvent
	Messages     []StatusMessage
	Leaderboards []Leaderboard
}

// ReportResult is the outcome of one reporting pass.
type ReportResult struct {
	// AllReportables is every candidate that survived the reporting horizon.
	AllReportables []ReportableContext
	// ToBeReported is the subset not yet present in the reported history.
	ToBeReported []ReportableContext
}

// GatherReportables wraps every event, message and leaderboard in its context,
// round by round in the given order.
func GatherReportables(datas []VirtualMatchReportData) []ReportableContext {
	var out []ReportableContext
	b := contextBuilder{}
	for _, d := range datas {
		for _, e := range d.Events {
			out = append(out, b.GameEvent(e))
		}
		for _, m := range d.Messages {
			out = append(out, b.Message(m))
		}
		for _, l := range d.Leaderboards {
			out = append(out, b.Leaderboard(l))
		}
	}
	return out
}

// ApplyReportingHorizon drops reportables of rounds after the game was decided.
// The final leaderboard is the first leaderboard, by time, with at most one team
// alive. When there is none every candidate is kept. Otherwise only candidates
// whose round has a leaderboard at or before the final one are kept. Leaderboards
// with equal times keep their candidate order.
func ApplyReportingHorizon(candidates []ReportableContext) []ReportableContext {
	var leaderboards []ReportableContext
	for _, rc := range candidates {
		if _, ok := rc.Item.(Leaderboard); ok && rc.Type == ReportableLeaderboard {
			leaderboards = append(leaderboards, rc)
		}
	}
	slices.SortStableFunc(leaderboards, func(a, b ReportableContext) int {
		return a.Time.Compare(b.Time)
	})

	final := slices.IndexFunc(leaderboards, func(rc ReportableContext) bool {
		return rc.Item.(Leaderboard).IsFinal()
	})
	if final < 0 {
		return candidates
	}

	settled := make(map[VirtualMatchKey]struct{}, final+1)
	for _, rc := range leaderboards[:final+1] {
		settled[rc.Key()] = struct{}{}
	}

	out := make([]ReportableContext, 0, len(candidates))
	for _, rc := range candidates {
		if _, ok := settled[rc.Key()]; ok {
			out = append(out, rc)
		}
	}
	return out
}

// AlreadyReported returns the candidates whose identity is not in history.
// It fails when any history entry or candidate has no identity strategy, so a
// partial result is never returned.
func AlreadyReported(candidates []ReportableContext, history []ReportedItem) ([]ReportableContext, error) {
	seen := make(map[ReportableKey]struct{}, len(history))
	for _, h := range history {
		key, err := h.Context.IdentityKey()
		if err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
	}

	var fresh []ReportableContext
	for _, rc := range candidates {
		key, err := rc.IdentityKey()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, rc)
	}
	return fresh, nil
}

// ItemsToBeReported gathers the candidates of a pass, applies the reporting
// horizon and diffs the result against the game's reported history.
func ItemsToBeReported(datas []VirtualMatchReportData, game Game) (ReportResult, error) {
	all := ApplyReportingHorizon(GatherReportables(datas))
	fresh, err := AlreadyReported(all, game.MatchesReported)
	if err != nil {
		return ReportResult{}, err
	}
	return ReportResult{AllReportables: all, ToBeReported: fresh}, nil
}
