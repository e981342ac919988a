package multiplayerdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTypes(events []GameEvent) []GameEventType {
	out := make([]GameEventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestBuildReportDataWaitsForIncompleteRounds(t *testing.T) {
	game := twoTeamGame(2)
	game.LobbyIDs = []LobbyID{10, 11}
	matches := []RealMatch{
		played(1, 10, "100", 1, passed("a1", 100)),
		played(2, 11, "100", 1, passed("b1", 200)),
		played(3, 10, "200", 2, passed("a1", 100)),
	}

	results, err := BuildReportData(game, matches)
	require.NoError(t, err)

	require.Len(t, results.Reports, 2)
	assert.Equal(t, 1, results.Completed)

	first := results.Reports[0]
	assert.Equal(t, []GameEventType{EventTeamScoredHighest, EventTeamLostLife}, eventTypes(first.Events))
	assert.Len(t, first.Leaderboards, 1)
	require.Len(t, first.Messages, 3)
	assert.Equal(t, MessageAllLobbiesCompletedBeatmap, first.Messages[2].Type)

	pending := results.Reports[1]
	assert.Empty(t, pending.Events)
	assert.Empty(t, pending.Leaderboards)
	require.Len(t, pending.Messages, 2)
	assert.Equal(t, MessageLobbyCompletedBeatmap, pending.Messages[0].Type)
	assert.Equal(t, MessageWaitingForLobbies, pending.Messages[1].Type)
	assert.Equal(t, []LobbyID{11}, pending.Messages[1].WaitingFor)

	assert.Equal(t, 1, results.Standing.RoundsCompleted)
	assert.Equal(t, 1, results.Standing.RoundsPending)
	assert.False(t, results.Standing.Concluded)
}

func TestBuildReportDataScenarioEvents(t *testing.T) {
	game := twoTeamGame(2)

	results, err := BuildReportData(game, scenarioMatches())
	require.NoError(t, err)
	require.Len(t, results.Reports, 3)

	assert.Equal(t,
		[]GameEventType{EventTeamScoredHighest, EventTeamScoredHighest, EventTeamsTied},
		eventTypes(results.Reports[1].Events))
	assert.Equal(t,
		[]GameEventType{EventTeamScoredHighest, EventTeamLostLife, EventTeamEliminated, EventTeamWon},
		eventTypes(results.Reports[2].Events))

	tied := results.Reports[1].Events[2]
	assert.Equal(t, []TeamID{1, 2}, tied.TeamIDs)

	standing := results.Standing
	assert.True(t, standing.Concluded)
	require.NotNil(t, standing.Winner)
	assert.Equal(t, TeamID(2), *standing.Winner)
	require.Len(t, standing.Teams, 2)
	require.NotNil(t, standing.Teams[0].EliminatedIn)
	assert.Equal(t, key("300", 1), *standing.Teams[0].EliminatedIn)
	assert.Nil(t, standing.Teams[1].EliminatedIn)
}

func TestBuildReportDataRejectsMatchWithoutBeatmap(t *testing.T) {
	_, err := BuildReportData(twoTeamGame(2), []RealMatch{{ID: 4, LobbyID: 10}})

	assert.ErrorIs(t, err, ErrMatchMissingBeatmap)
}

func TestBuildReportDataDerivesSameBeatmapNumbers(t *testing.T) {
	game := twoTeamGame(3)
	matches := []RealMatch{
		{ID: 1, LobbyID: 10, BeatmapID: "100", EndTime: at(1), Scores: []PlayerScore{passed("a1", 1), passed("b1", 2)}},
		{ID: 2, LobbyID: 10, BeatmapID: "100", EndTime: at(2), Scores: []PlayerScore{passed("a1", 1), passed("b1", 2)}},
	}

	results, err := BuildReportData(game, matches)
	require.NoError(t, err)

	require.Len(t, results.VirtualMatches, 2)
	assert.Equal(t, key("100", 1), results.VirtualMatches[0].Key)
	assert.Equal(t, key("100", 2), results.VirtualMatches[1].Key)
	assert.Equal(t, 1, results.Standing.Teams[0].Lives)
}

func TestBuildReportDataStopsAtDecidingRound(t *testing.T) {
	results, err := BuildReportData(twoTeamGame(2), horizonMatches())
	require.NoError(t, err)

	assert.Equal(t, 5, results.Completed)
	assert.Equal(t, 3, results.Settled)

	boards := results.Leaderboards()
	require.Len(t, boards, 3)
	assert.True(t, boards[2].IsFinal())

	standing := results.Standing
	require.NotNil(t, standing.Latest)
	assert.Equal(t, key("300", 1), standing.Latest.Key())
	assert.True(t, standing.Latest.IsFinal())
	assert.Equal(t, 3, standing.RoundsCompleted)
	assert.Zero(t, standing.RoundsPending)

	for _, d := range results.Reports[3:] {
		assert.Empty(t, d.Events, "round %s", d.Key)
		assert.Empty(t, d.Leaderboards, "round %s", d.Key)
	}
}
