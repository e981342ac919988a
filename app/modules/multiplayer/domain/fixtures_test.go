package multiplayerdomain

import "time"

var baseTime = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func at(minute int) *time.Time {
	t := baseTime.Add(time.Duration(minute) * time.Minute)
	return &t
}

func passed(playerID string, score int64) PlayerScore {
	return PlayerScore{PlayerID: playerID, Username: playerID, Score: score, Passed: true}
}

func played(id MatchID, lobby LobbyID, beatmap string, endMinute int, scores ...PlayerScore) RealMatch {
	return RealMatch{
		ID:                id,
		LobbyID:           lobby,
		BeatmapID:         beatmap,
		SameBeatmapNumber: 1,
		StartTime:         at(endMinute - 1),
		EndTime:           at(endMinute),
		Scores:            scores,
	}
}

// twoTeamGame has team 1 (player "a1") and team 2 (player "b1") in lobby 10.
func twoTeamGame(lives int) Game {
	return Game{
		ID:        7,
		Status:    GameStatusInProgress,
		TeamLives: lives,
		Teams: []Team{
			{ID: 1, Number: 1, Name: "Team A", Members: []TeamMember{{PlayerID: "a1", Username: "a1"}}},
			{ID: 2, Number: 2, Name: "Team B", Members: []TeamMember{{PlayerID: "b1", Username: "b1"}}},
		},
		LobbyIDs: []LobbyID{10},
	}
}

// scenarioMatches is the two team scenario: A loses, tie, A loses again.
func scenarioMatches() []RealMatch {
	return []RealMatch{
		played(1, 10, "100", 1, passed("a1", 100), passed("b1", 200)),
		played(2, 10, "200", 2, passed("a1", 150), passed("b1", 150)),
		played(3, 10, "300", 3, passed("a1", 50), passed("b1", 300)),
	}
}

func key(beatmap string, n int) VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: beatmap, SameBeatmapNumber: n}
}
