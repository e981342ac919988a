package multiplayerdomain

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// VirtualMatchKey identifies one logical round of a game.
// SameBeatmapNumber disambiguates repeat plays of the same beatmap.
type VirtualMatchKey struct {
	BeatmapID         string `json:"beatmapId"`
	SameBeatmapNumber int    `json:"sameBeatmapNumber"`
}

// String returns the key in its map form, e.g. "1234_1".
func (k VirtualMatchKey) String() string {
	return fmt.Sprintf("%s_%d", k.BeatmapID, k.SameBeatmapNumber)
}

// KeyOf returns the virtual match key a real match belongs to.
func KeyOf(m RealMatch) VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: m.BeatmapID, SameBeatmapNumber: m.SameBeatmapNumber}
}

// VirtualMatch groups every lobby's play of the same beatmap round.
// Matches are kept sorted oldest to latest.
type VirtualMatch struct {
	Key     VirtualMatchKey
	Matches []RealMatch
}

// LatestMatch returns the latest constituent match. It panics on an empty virtual match,
// which GroupVirtualMatches never produces.
func (vm VirtualMatch) LatestMatch() RealMatch {
	return vm.Matches[len(vm.Matches)-1]
}

// Time is the time associated with the round: the latest end time, else the
// latest start time, else the zero time.
func (vm VirtualMatch) Time() time.Time {
	var latest time.Time
	for _, m := range vm.Matches {
		if m.EndTime != nil && m.EndTime.After(latest) {
			latest = *m.EndTime
		}
	}
	if !latest.IsZero() {
		return latest
	}
	for _, m := range vm.Matches {
		if m.StartTime != nil && m.StartTime.After(latest) {
			latest = *m.StartTime
		}
	}
	return latest
}

// LobbyIDs returns the lobbies that played this round.
func (vm VirtualMatch) LobbyIDs() []LobbyID {
	ids := make([]LobbyID, 0, len(vm.Matches))
	for _, m := range vm.Matches {
		if !slices.Contains(ids, m.LobbyID) {
			ids = append(ids, m.LobbyID)
		}
	}
	return ids
}

// IsComplete reports whether every given lobby has played this round.
// An empty lobby list counts as complete.
func (vm VirtualMatch) IsComplete(lobbyIDs []LobbyID) bool {
	played := vm.LobbyIDs()
	for _, id := range lobbyIDs {
		if !slices.Contains(played, id) {
			return false
		}
	}
	return true
}

// CompareMatchesOldestToLatest orders real matches oldest to latest. Finished
// matches come first by end time, then matches with only a start time by start
// time, then matches with neither. Remaining ties go to start time and then
// match id, so the order is total and independent of input order.
func CompareMatchesOldestToLatest(a, b RealMatch) int {
	if c := compareOptionalTime(a.EndTime, b.EndTime); c != 0 {
		return c
	}
	if c := compareOptionalTime(a.StartTime, b.StartTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareOptionalTime orders present times chronologically before absent ones.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// CompareVirtualMatches orders virtual matches by their latest constituent match.
// The key string breaks the remaining ties so the order is total.
func CompareVirtualMatches(a, b VirtualMatch) int {
	if c := CompareMatchesOldestToLatest(a.LatestMatch(), b.LatestMatch()); c != 0 {
		return c
	}
	return cmp.Compare(a.Key.String(), b.Key.String())
}

// GroupVirtualMatches groups real matches by virtual match key and returns the
// virtual matches in round order.
func GroupVirtualMatches(matches []RealMatch) []VirtualMatch {
	index := make(map[VirtualMatchKey]int)
	var vms []VirtualMatch

	for _, m := range matches {
		key := KeyOf(m)
		i, ok := index[key]
		if !ok {
			i = len(vms)
			index[key] = i
			vms = append(vms, VirtualMatch{Key: key})
		}
		vms[i].Matches = append(vms[i].Matches, m)
	}

	for i := range vms {
		slices.SortStableFunc(vms[i].Matches, CompareMatchesOldestToLatest)
	}
	slices.SortStableFunc(vms, CompareVirtualMatches)
	return vms
}

// AssignSameBeatmapNumbers fills in SameBeatmapNumber for matches recorded without one.
// Within each lobby the nth play of a beatmap (in comparator order) gets number n.
// The input slice is not modified.
func AssignSameBeatmapNumbers(matches []RealMatch) []RealMatch {
	out := slices.Clone(matches)

	byLobby := make(map[LobbyID][]int)
	for i, m := range out {
		byLobby[m.LobbyID] = append(byLobby[m.LobbyID], i)
	}

	for _, idxs := range byLobby {
		slices.SortStableFunc(idxs, func(a, b int) int {
			return CompareMatchesOldestToLatest(out[a], out[b])
		})
		seen := make(map[string]int)
		for _, i := range idxs {
			seen[out[i].BeatmapID]++
			if out[i].SameBeatmapNumber == 0 {
				out[i].SameBeatmapNumber = seen[out[i].BeatmapID]
			}
		}
	}
	return out
}

// SortedBefore returns the virtual matches whose latest match is not later than the
// target's latest match, in round order.
func SortedBefore(all []VirtualMatch, target VirtualMatch) []VirtualMatch {
	targetLatest := target.LatestMatch()
	var out []VirtualMatch
	for _, vm := range all {
		if CompareMatchesOldestToLatest(vm.LatestMatch(), targetLatest) <= 0 {
			out = append(out, vm)
		}
	}
	slices.SortStableFunc(out, CompareVirtualMatches)
	return out
}
