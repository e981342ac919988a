package multiplayerrender

import (
	"bytes"
	"fmt"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Text       drawing.Color
	Alive      drawing.Color
	Eliminated drawing.Color
}

// DefaultPalette is used when no palette is configured.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorWhite,
	Text:       drawing.ColorFromHex("333333"),
	Alive:      drawing.ColorFromHex("2e7d32"),
	Eliminated: drawing.ColorFromHex("9e9e9e"),
}

// LeaderboardChart renders a PNG bar chart of team scores for one round.
func LeaderboardChart(l multiplayerdomain.Leaderboard, palette ChartPalette) ([]byte, error) {
	if len(l.Lines) == 0 {
		return renderNoDataPlaceholder(palette, "No scores recorded")
	}

	var top float64
	bars := make([]chart.Value, 0, len(l.Lines))
	for _, line := range l.Lines {
		color := palette.Alive
		if !line.Alive {
			color = palette.Eliminated
		}
		value := float64(line.TeamScore.Score)
		top = max(top, value)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%d. Team %d", line.Position.Current, line.TeamNumber),
			Value: value,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}
	if top <= 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Round %d: beatmap %s (#%d)", l.RoundNumber, l.BeatmapID, l.SameBeatmapNumber),
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      800,
		Height:     400,
		BarWidth:   min(40, max(10, 600/len(bars))),
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.Style{FontColor: palette.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render leaderboard chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
