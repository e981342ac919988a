package multiplayerservice

import (
	"context"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

// ReportPublisher delivers a reportable to the game's message targets. A nil
// error confirms delivery.
type ReportPublisher interface {
	PublishReportable(ctx context.Context, game multiplayerdomain.Game, item multiplayerdomain.ReportableContext) error
}

// ResultsView is a side-effect free computation over a game.
type ResultsView struct {
	Game    multiplayerdomain.Game
	Results multiplayerdomain.GameResults
	Report  multiplayerdomain.ReportResult
}

// ReportOptions tune a report pass.
type ReportOptions struct {
	// DryRun computes what would be published without publishing or recording.
	DryRun bool
}

// ReportOutcome summarises a report pass.
type ReportOutcome struct {
	GameID    multiplayerdomain.GameID
	Published []multiplayerdomain.ReportableContext
	// Pending holds items a dry run would have published.
	Pending   []multiplayerdomain.ReportableContext
	Recorded  int64
	Concluded bool
	Status    multiplayerdomain.GameStatus

	publishErr error
}

// TeamSetup describes a team of a new game.
type TeamSetup struct {
	Number  int
	Name    string
	Members []multiplayerdomain.TeamMember
}

// GameSetup describes a new game.
type GameSetup struct {
	Name              string
	TeamLives         int
	CountFailedScores bool
	Teams             []TeamSetup
	LobbyIDs          []multiplayerdomain.LobbyID
	MessageTargets    []multiplayerdomain.MessageTarget
}
