package multiplayerintegrationtests

import (
	"testing"
	"time"

	"github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer"
	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportableSubjects = "multiplayer.reportable.>"

func TestReportResults_PublishesOnceAndRecords(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 3)

	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 900, 500)))
	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(2, "200", 5, 400, 800)))

	first, err := deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Published)
	assert.Equal(t, int64(len(first.Published)), first.Recorded)
	assert.Equal(t, multiplayerdomain.GameStatusInProgress, first.Status)

	got, err := testEnv.WaitForStreamMessages(deps.Ctx, multiplayer.StreamName, reportableSubjects, uint64(len(first.Published)), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(first.Published)), got)

	second, err := deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{})
	require.NoError(t, err)
	assert.Empty(t, second.Published)
	assert.Zero(t, second.Recorded)

	count, err := testEnv.StreamMessageCount(deps.Ctx, multiplayer.StreamName, reportableSubjects)
	require.NoError(t, err)
	assert.Equal(t, got, count)
}

func TestReportResults_DryRunPublishesNothing(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 3)
	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 900, 500)))

	outcome, err := deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{DryRun: true})
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.Pending)
	assert.Empty(t, outcome.Published)

	count, err := testEnv.StreamMessageCount(deps.Ctx, multiplayer.StreamName, reportableSubjects)
	require.NoError(t, err)
	assert.Zero(t, count)

	// the dry run recorded nothing, so a real pass still publishes everything
	live, err := deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{})
	require.NoError(t, err)
	assert.Len(t, live.Published, len(outcome.Pending))
}

func TestReportResults_ConcludesGameWhenOneTeamRemains(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 1)
	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 900, 500)))

	outcome, err := deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{})
	require.NoError(t, err)
	assert.True(t, outcome.Concluded)
	assert.Equal(t, multiplayerdomain.GameStatusCompleted, outcome.Status)

	standing, err := deps.Service.GetGameStanding(deps.Ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, standing)

	reportable, err := deps.Service.ListReportableGames(deps.Ctx)
	require.NoError(t, err)
	assert.NotContains(t, reportable, gameID)

	_, err = deps.Service.ReportResults(deps.Ctx, gameID, multiplayerservice.ReportOptions{})
	assert.ErrorIs(t, err, multiplayerservice.ErrGameNotReportable)
}

func TestRecordMatch_ReplacesEarlierCopy(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 3)

	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 100, 900)))
	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 900, 100)))

	view, err := deps.Service.ComputeResults(deps.Ctx, gameID)
	require.NoError(t, err)
	require.Len(t, view.Results.VirtualMatches, 1)
	require.Len(t, view.Results.VirtualMatches[0].Matches, 1)
	assert.Equal(t, int64(900), view.Results.VirtualMatches[0].Matches[0].Scores[0].Score)
}

func TestRecordMatch_UnknownLobby(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 3)

	match := matchAt(1, "100", 1, 900, 500)
	match.LobbyID = lobbyID + 1
	err := deps.Service.RecordMatch(deps.Ctx, gameID, match)
	assert.ErrorIs(t, err, multiplayerservice.ErrUnknownLobby)
}

func TestRemoveLobby_UnblocksWaitingRound(t *testing.T) {
	deps := SetupTestMultiplayerService(t)
	gameID := createRunningGame(t, deps, 3)
	silent := lobbyID + 1

	lobbies, err := deps.Service.AddLobby(deps.Ctx, gameID, silent)
	require.NoError(t, err)
	assert.Equal(t, []multiplayerdomain.LobbyID{lobbyID, silent}, lobbies)

	require.NoError(t, deps.Service.RecordMatch(deps.Ctx, gameID, matchAt(1, "100", 1, 900, 500)))
	_, err = deps.Service.AddLobby(deps.Ctx, gameID, silent+1)
	assert.ErrorIs(t, err, multiplayerservice.ErrLobbiesLocked)

	before, err := deps.Service.GetGameStanding(deps.Ctx, gameID)
	require.NoError(t, err)
	assert.Zero(t, before.RoundsCompleted)

	lobbies, err = deps.Service.RemoveLobby(deps.Ctx, gameID, silent)
	require.NoError(t, err)
	assert.Equal(t, []multiplayerdomain.LobbyID{lobbyID}, lobbies)

	after, err := deps.Service.GetGameStanding(deps.Ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.RoundsCompleted)

	_, err = deps.Service.RemoveLobby(deps.Ctx, gameID, lobbyID)
	assert.ErrorIs(t, err, multiplayerservice.ErrInvalidGameSetup)
}
