package multiplayerrender

import (
	"io"
	"strconv"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteLeaderboardTable prints a leaderboard as an aligned terminal table.
func WriteLeaderboardTable(w io.Writer, l multiplayerdomain.Leaderboard) error {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header(" ", "POS", "TEAM", "NAME", "EVENT", "LIVES", "SCORE", "PLAYERS")

	digits := len(strconv.Itoa(len(l.Lines)))
	for _, line := range l.Lines {
		icon := noIcon
		if line.EventIcon != nil {
			icon = line.EventIcon.Emoji
		}
		score := strconv.FormatInt(line.TeamScore.Score, 10)
		if len(line.TeamScore.TiedWithTeamNumbers) > 0 {
			score += tieMarker
		}
		if err := table.Append(
			positionChange(line.Position),
			pad(line.Position.Current, digits),
			pad(line.TeamNumber, digits),
			line.TeamName,
			icon,
			LifeBar(line.Lives),
			score,
			playersText(line.Players),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteStandingTable prints the standing of every team.
func WriteStandingTable(w io.Writer, s multiplayerdomain.GameStanding) error {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("TEAM", "NAME", "LIVES", "ALIVE", "ELIMINATED IN")
	for _, t := range s.Teams {
		eliminatedIn := "-"
		if t.EliminatedIn != nil {
			eliminatedIn = t.EliminatedIn.String()
		}
		if err := table.Append(
			strconv.Itoa(t.Number),
			t.Name,
			LifeBar(multiplayerdomain.LeaderboardLives{Current: t.Lives, Starting: t.StartingLives}),
			strconv.FormatBool(t.Alive),
			eliminatedIn,
		); err != nil {
			return err
		}
	}
	return table.Render()
}
