// Package multiplayerrender turns computed results into text, charts and spreadsheets.
package multiplayerrender

import (
	"fmt"
	"strconv"
	"strings"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

const (
	lifeFull  = "🤎"
	lifeEmpty = "🤍"
	noIcon    = "⬛"
	tieMarker = "👔"
)

// ReportableText renders any reportable as the text posted to a channel.
func ReportableText(rc multiplayerdomain.ReportableContext) (string, error) {
	return multiplayerdomain.VisitReportable[string](rc.Item, textVisitor{})
}

type textVisitor struct{}

func (textVisitor) GameEvent(e multiplayerdomain.GameEvent) string {
	return strings.TrimSpace(e.Type.Emoji() + " " + e.Description)
}

func (textVisitor) Message(m multiplayerdomain.StatusMessage) string {
	return m.Message
}

func (textVisitor) Leaderboard(l multiplayerdomain.Leaderboard) string {
	return LeaderboardText(l)
}

// LeaderboardText renders a leaderboard as a fenced block with alive teams first.
func LeaderboardText(l multiplayerdomain.Leaderboard) string {
	var b strings.Builder
	b.WriteString("```\n")
	fmt.Fprintf(&b, "Round %d: beatmap %s (#%d)\n", l.RoundNumber, l.BeatmapID, l.SameBeatmapNumber)

	digits := len(strconv.Itoa(len(l.Lines)))
	writeGroup := func(title string, alive bool) {
		first := true
		for _, line := range l.Lines {
			if line.Alive != alive {
				continue
			}
			if first {
				fmt.Fprintf(&b, "\n%s\n", title)
				first = false
			}
			b.WriteString(LeaderboardLineText(line, digits))
			b.WriteByte('\n')
		}
	}
	writeGroup("Alive", true)
	writeGroup("Eliminated", false)

	b.WriteString("```")
	return b.String()
}

// LeaderboardLineText renders one team's row. Positions and team numbers are
// zero padded to digits.
func LeaderboardLineText(line multiplayerdomain.LeaderboardLine, digits int) string {
	icon := noIcon
	if line.EventIcon != nil {
		icon = line.EventIcon.Emoji
	}

	team := "Team " + pad(line.TeamNumber, digits)
	if line.TeamName != "" {
		team += " " + line.TeamName
	}

	score := strconv.FormatInt(line.TeamScore.Score, 10)
	if len(line.TeamScore.TiedWithTeamNumbers) > 0 {
		score += tieMarker
	}

	return fmt.Sprintf("%s %s. %s |%s| %s | Score: %s | %s",
		positionChange(line.Position),
		pad(line.Position.Current, digits),
		team,
		icon,
		LifeBar(line.Lives),
		score,
		playersText(line.Players),
	)
}

// LifeBar draws remaining lives followed by lost ones.
func LifeBar(lives multiplayerdomain.LeaderboardLives) string {
	current := max(lives.Current, 0)
	lost := max(lives.Starting-current, 0)
	return strings.Repeat(lifeFull, current) + strings.Repeat(lifeEmpty, lost)
}

func positionChange(p multiplayerdomain.LeaderboardPosition) string {
	switch {
	case p.Gained:
		return "⬆"
	case p.Lost:
		return "⬇"
	default:
		return " "
	}
}

func pad(n, digits int) string {
	return fmt.Sprintf("%0*d", digits, n)
}

func playersText(players []multiplayerdomain.PlayerResult) string {
	parts := make([]string, 0, len(players))
	for _, p := range players {
		score := strconv.FormatInt(p.Score, 10)
		if p.HighestInTeam {
			score = "*" + score + "*"
		}
		name := p.Username
		if name == "" {
			name = p.PlayerID
		}
		part := name + ": " + score
		if p.Grade != "" {
			part += " [" + p.Grade + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
