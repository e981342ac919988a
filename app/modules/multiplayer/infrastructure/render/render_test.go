package multiplayerrender

import (
	"bytes"
	"strings"
	"testing"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLeaderboard() multiplayerdomain.Leaderboard {
	return multiplayerdomain.Leaderboard{
		GameID:               1,
		BeatmapID:            "1234",
		SameBeatmapNumber:    1,
		RoundNumber:          3,
		LeaderboardEventTime: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Lines: []multiplayerdomain.LeaderboardLine{
			{
				TeamID: 1, TeamNumber: 1, TeamName: "Red", Alive: true,
				Position:  multiplayerdomain.LeaderboardPosition{Current: 1, Previous: 2, Gained: true},
				Lives:     multiplayerdomain.LeaderboardLives{Current: 1, Starting: 2},
				TeamScore: multiplayerdomain.LeaderboardTeamScore{Score: 200000, TiedWithTeamNumbers: []int{}},
				EventIcon: &multiplayerdomain.EventIcon{Type: multiplayerdomain.EventTeamScoredHighest, Emoji: "⭐"},
				Players: []multiplayerdomain.PlayerResult{
					{PlayerID: "p1", Username: "TXP1", Score: 110000, Grade: "B", HighestInTeam: true},
					{PlayerID: "p2", Username: "TXP2", Score: 90000, Grade: "C"},
				},
			},
			{
				TeamID: 2, TeamNumber: 2, TeamName: "Blue", Alive: false,
				Position:  multiplayerdomain.LeaderboardPosition{Current: 2, Previous: 1, Lost: true},
				Lives:     multiplayerdomain.LeaderboardLives{Current: 0, Starting: 2},
				TeamScore: multiplayerdomain.LeaderboardTeamScore{Score: 40000, TiedWithTeamNumbers: []int{}},
				EventIcon: &multiplayerdomain.EventIcon{Type: multiplayerdomain.EventTeamEliminated, Emoji: "💀"},
				Players: []multiplayerdomain.PlayerResult{
					{PlayerID: "p3", Score: 40000, HighestInTeam: true},
				},
			},
		},
	}
}

func TestLeaderboardText(t *testing.T) {
	text := LeaderboardText(sampleLeaderboard())

	assert.True(t, strings.HasPrefix(text, "```\nRound 3: beatmap 1234 (#1)\n"))
	assert.True(t, strings.HasSuffix(text, "```"))
	assert.Less(t, strings.Index(text, "Alive"), strings.Index(text, "Eliminated"))
	assert.Contains(t, text, "⬆ 1. Team 1 Red |⭐| 🤎🤍 | Score: 200000 | TXP1: *110000* [B], TXP2: 90000 [C]")
	assert.Contains(t, text, "⬇ 2. Team 2 Blue |💀| 🤍🤍 | Score: 40000 | p3: *40000*")
}

func TestLeaderboardLineText(t *testing.T) {
	tests := []struct {
		name   string
		line   multiplayerdomain.LeaderboardLine
		digits int
		want   string
	}{
		{
			name: "pads numbers and marks ties",
			line: multiplayerdomain.LeaderboardLine{
				TeamNumber: 7,
				Alive:      true,
				Position:   multiplayerdomain.LeaderboardPosition{Current: 3, Previous: 3, Same: true},
				Lives:      multiplayerdomain.LeaderboardLives{Current: 3, Starting: 3},
				TeamScore:  multiplayerdomain.LeaderboardTeamScore{Score: 10, TiedWithTeamNumbers: []int{9}},
			},
			digits: 2,
			want:   "  03. Team 07 |⬛| 🤎🤎🤎 | Score: 10👔 | ",
		},
		{
			name: "no lives left",
			line: multiplayerdomain.LeaderboardLine{
				TeamNumber: 1,
				Position:   multiplayerdomain.LeaderboardPosition{Current: 2, Previous: 2, Same: true},
				Lives:      multiplayerdomain.LeaderboardLives{Current: 0, Starting: 1},
			},
			digits: 1,
			want:   "  2. Team 1 |⬛| 🤍 | Score: 0 | ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeaderboardLineText(tt.line, tt.digits))
		})
	}
}

func TestLifeBar(t *testing.T) {
	assert.Equal(t, "🤎🤎🤍", LifeBar(multiplayerdomain.LeaderboardLives{Current: 2, Starting: 3}))
	assert.Equal(t, "", LifeBar(multiplayerdomain.LeaderboardLives{Current: -1, Starting: 0}))
}

func TestReportableText(t *testing.T) {
	event := multiplayerdomain.GameEvent{Type: multiplayerdomain.EventTeamLostLife, Description: "Team 2 lost a life!"}
	rc, err := multiplayerdomain.NewReportableContext(event)
	require.NoError(t, err)
	text, err := ReportableText(rc)
	require.NoError(t, err)
	assert.Equal(t, "💥 Team 2 lost a life!", text)

	msg := multiplayerdomain.StatusMessage{Type: multiplayerdomain.MessageWaitingForLobbies, Message: "Waiting for lobby 11."}
	rc, err = multiplayerdomain.NewReportableContext(msg)
	require.NoError(t, err)
	text, err = ReportableText(rc)
	require.NoError(t, err)
	assert.Equal(t, "Waiting for lobby 11.", text)

	rc, err = multiplayerdomain.NewReportableContext(sampleLeaderboard())
	require.NoError(t, err)
	text, err = ReportableText(rc)
	require.NoError(t, err)
	assert.Contains(t, text, "Round 3")
}

func TestLeaderboardChart(t *testing.T) {
	png := []byte("\x89PNG")

	data, err := LeaderboardChart(sampleLeaderboard(), DefaultPalette)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, png))

	zero := sampleLeaderboard()
	for i := range zero.Lines {
		zero.Lines[i].TeamScore.Score = 0
	}
	data, err = LeaderboardChart(zero, DefaultPalette)
	require.NoError(t, err, "all zero scores still render")
	assert.True(t, bytes.HasPrefix(data, png))

	data, err = LeaderboardChart(multiplayerdomain.Leaderboard{}, DefaultPalette)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, png))
}

func TestExportResults(t *testing.T) {
	key := multiplayerdomain.VirtualMatchKey{BeatmapID: "1234", SameBeatmapNumber: 1}
	res := multiplayerdomain.GameResults{
		GameID: 1,
		Reports: []multiplayerdomain.VirtualMatchReportData{
			{Key: key, Leaderboards: []multiplayerdomain.Leaderboard{sampleLeaderboard()}},
		},
		Standing: multiplayerdomain.GameStanding{
			GameID: 1,
			Teams: []multiplayerdomain.TeamStanding{
				{TeamID: 1, Number: 1, Name: "Red", Lives: 1, StartingLives: 2, Alive: true},
				{TeamID: 2, Number: 2, Name: "Blue", Lives: 0, StartingLives: 2, EliminatedIn: &key},
			},
		},
	}

	buf, err := ExportResults(res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StandingSheet, RoundsSheet}, f.GetSheetList())

	standing, err := f.GetRows(StandingSheet)
	require.NoError(t, err)
	require.Len(t, standing, 3)
	assert.Equal(t, "Team", standing[0][0])
	assert.Equal(t, []string{"2", "Blue", "0", "2", "FALSE", "1234_1"}, standing[2])

	rounds, err := f.GetRows(RoundsSheet)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, "200000", rounds[1][6])
	assert.Equal(t, string(multiplayerdomain.EventTeamEliminated), rounds[2][9])
}

func TestWriteLeaderboardTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboardTable(&buf, sampleLeaderboard()))
	out := buf.String()
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, "Blue")
	assert.Contains(t, out, "200000")

	buf.Reset()
	require.NoError(t, WriteStandingTable(&buf, multiplayerdomain.GameStanding{
		Teams: []multiplayerdomain.TeamStanding{{Number: 1, Name: "Red", Lives: 2, StartingLives: 2, Alive: true}},
	}))
	assert.Contains(t, buf.String(), "Red")
}
