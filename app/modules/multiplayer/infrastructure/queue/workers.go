package multiplayerqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/riverqueue/river"
)

// Reporter is the part of the multiplayer service the workers drive.
type Reporter interface {
	ReportResults(ctx context.Context, gameID multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error)
	ListReportableGames(ctx context.Context) ([]multiplayerdomain.GameID, error)
}

// Enqueuer inserts report jobs.
type Enqueuer interface {
	EnqueueReport(ctx context.Context, gameID multiplayerdomain.GameID) error
}

// reportTimeout bounds one pass; publication is throttled so long games take a while.
const reportTimeout = 5 * time.Minute

// ReportGameWorker runs report passes.
type ReportGameWorker struct {
	river.WorkerDefaults[ReportGameJob]
	reporter Reporter
	logger   *slog.Logger
}

// NewReportGameWorker creates a ReportGameWorker.
func NewReportGameWorker(logger *slog.Logger, reporter Reporter) *ReportGameWorker {
	return &ReportGameWorker{reporter: reporter, logger: logger}
}

// Timeout overrides the client default for report passes.
func (w *ReportGameWorker) Timeout(*river.Job[ReportGameJob]) time.Duration { return reportTimeout }

// Work runs the pass. Failed publications and storage errors are retried by
// River; a game that was completed meanwhile finishes the job, and any other
// rejected request cancels it.
func (w *ReportGameWorker) Work(ctx context.Context, job *river.Job[ReportGameJob]) error {
	ctx, _ = attr.EnsureCorrelationID(ctx)
	logger := w.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.GameID(job.Args.GameID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	outcome, err := w.reporter.ReportResults(ctx, job.Args.GameID, multiplayerservice.ReportOptions{})
	if err != nil {
		switch {
		case errors.Is(err, multiplayerservice.ErrGameNotReportable):
			logger.InfoContext(ctx, "Game no longer reportable, skipping", attr.Error(err))
			return nil
		case multiplayerservice.IsBusinessError(err):
			logger.WarnContext(ctx, "Report job rejected, cancelling", attr.Error(err))
			return river.JobCancel(err)
		default:
			logger.ErrorContext(ctx, "Report job failed", attr.Error(err))
			return fmt.Errorf("report game %d: %w", job.Args.GameID, err)
		}
	}

	logger.InfoContext(ctx, "Report job completed",
		attr.Int("published", len(outcome.Published)),
		attr.Bool("concluded", outcome.Concluded),
		attr.String("status", string(outcome.Status)),
	)
	return nil
}

// SweepWorker enqueues a report job for every reportable game.
type SweepWorker struct {
	river.WorkerDefaults[SweepReportableGamesJob]
	reporter Reporter
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewSweepWorker creates a SweepWorker.
func NewSweepWorker(logger *slog.Logger, reporter Reporter, enqueuer Enqueuer) *SweepWorker {
	return &SweepWorker{reporter: reporter, enqueuer: enqueuer, logger: logger}
}

// Work lists reportable games and enqueues each. A failed insert does not stop
// the sweep; the failures are returned together.
func (w *SweepWorker) Work(ctx context.Context, _ *river.Job[SweepReportableGamesJob]) error {
	games, err := w.reporter.ListReportableGames(ctx)
	if err != nil {
		return fmt.Errorf("list reportable games: %w", err)
	}

	var errs []error
	for _, id := range games {
		if err := w.enqueuer.EnqueueReport(ctx, id); err != nil {
			w.logger.WarnContext(ctx, "Failed to enqueue report job", attr.GameID(id), attr.Error(err))
			errs = append(errs, err)
		}
	}

	w.logger.DebugContext(ctx, "Swept reportable games",
		attr.Int("games", len(games)),
		attr.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}
