package multiplayerrender

import (
	"bytes"
	"fmt"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/xuri/excelize/v2"
)

const (
	StandingSheet = "Standing"
	RoundsSheet   = "Rounds"
)

var (
	standingHeader = []any{"Team", "Name", "Lives", "Starting Lives", "Alive", "Eliminated In"}
	roundsHeader   = []any{"Round", "Beatmap", "Play", "Position", "Team", "Name", "Score", "Lives", "Alive", "Event", "Tied With"}
)

// ExportResults writes a workbook with the current standing and every
// leaderboard line of every completed round.
func ExportResults(res multiplayerdomain.GameResults) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StandingSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(RoundsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	standing := [][]any{standingHeader}
	for _, t := range res.Standing.Teams {
		eliminatedIn := ""
		if t.EliminatedIn != nil {
			eliminatedIn = t.EliminatedIn.String()
		}
		standing = append(standing, []any{t.Number, t.Name, t.Lives, t.StartingLives, t.Alive, eliminatedIn})
	}

	rounds := [][]any{roundsHeader}
	for _, lb := range res.Leaderboards() {
		for _, line := range lb.Lines {
			event := ""
			if line.EventIcon != nil {
				event = string(line.EventIcon.Type)
			}
			rounds = append(rounds, []any{
				lb.RoundNumber,
				lb.BeatmapID,
				lb.SameBeatmapNumber,
				line.Position.Current,
				line.TeamNumber,
				line.TeamName,
				line.TeamScore.Score,
				line.Lives.Current,
				line.Alive,
				event,
				fmt.Sprint(line.TeamScore.TiedWithTeamNumbers),
			})
		}
	}

	if err := writeSheet(f, StandingSheet, standing, bold); err != nil {
		return nil, err
	}
	if err := writeSheet(f, RoundsSheet, rounds, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
