package multiplayerqueue

import (
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

const (
	// QueueName is the dedicated queue for multiplayer jobs.
	QueueName = "multiplayer"

	reportGameKind   = "multiplayer_report_game"
	sweepGamesKind   = "multiplayer_sweep_games"
	reportMaxRetries = 5
)

// ReportGameJob runs one report pass for a game.
type ReportGameJob struct {
	GameID multiplayerdomain.GameID `json:"game_id"`
}

// Kind returns the job type identifier for River
func (ReportGameJob) Kind() string { return reportGameKind }

// SweepReportableGamesJob enqueues a report pass for every game still in progress.
type SweepReportableGamesJob struct{}

// Kind returns the job type identifier for River
func (SweepReportableGamesJob) Kind() string { return sweepGamesKind }

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	GameID      string `json:"game_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
