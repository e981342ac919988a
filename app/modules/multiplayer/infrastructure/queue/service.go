package multiplayerqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/uptrace/bun"
)

// Metrics is the operation recorder shared with the multiplayer service.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService schedules report passes on River.
type QueueService interface {
	Enqueuer
	// CancelGameJobs cancels queued report jobs of a game.
	CancelGameJobs(ctx context.Context, gameID multiplayerdomain.GameID) error
	// GetQueuedJobs returns report jobs of a game (for debugging).
	GetQueuedJobs(ctx context.Context, gameID multiplayerdomain.GameID) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config tunes the queue.
type Config struct {
	// SweepInterval is how often reportable games are swept. Zero disables the sweep.
	SweepInterval time.Duration
	MaxWorkers    int
}

// uniqueStates keeps one unfinished report job per game; finished jobs do not
// block the next pass.
var uniqueStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateRunning,
	rivertype.JobStateScheduled,
}

// Service runs multiplayer report jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService connects River to dsn and registers the report and sweep workers.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, reporter Reporter, cfg Config) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_multiplayer_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	service := &Service{
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReportGameWorker(ctxLogger, reporter))
	river.AddWorker(workers, NewSweepWorker(ctxLogger, reporter, service))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	riverConfig := &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
			QueueName:          {MaxWorkers: maxWorkers},
		},
		Workers:     workers,
		MaxAttempts: reportMaxRetries,
		Logger:      ctxLogger,
	}
	if cfg.SweepInterval > 0 {
		riverConfig.PeriodicJobs = []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.SweepInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return SweepReportableGamesJob{}, &river.InsertOpts{Queue: QueueName}
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		}
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig)
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	service.client = client

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Multiplayer queue service initialized",
		attr.Duration("sweep_interval", cfg.SweepInterval),
		attr.Int("max_workers", maxWorkers),
	)
	return service, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	return s.record(ctx, "start_service", func() error {
		if err := s.client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start River client: %w", err)
		}
		return nil
	})
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	err := s.record(ctx, "stop_service", func() error {
		if err := s.client.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop River client: %w", err)
		}
		return nil
	})
	s.pool.Close()
	return err
}

// EnqueueReport inserts a report job unless one is already waiting or running for the game.
func (s *Service) EnqueueReport(ctx context.Context, gameID multiplayerdomain.GameID) error {
	return s.record(ctx, "enqueue_report", func() error {
		res, err := s.client.Insert(ctx, ReportGameJob{GameID: gameID}, &river.InsertOpts{
			Queue: QueueName,
			UniqueOpts: river.UniqueOpts{
				ByArgs:  true,
				ByState: uniqueStates,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to enqueue report job: %w", err)
		}
		s.logger.DebugContext(ctx, "Report job enqueued",
			attr.GameID(gameID),
			attr.Int64("job_id", res.Job.ID),
			attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		)
		return nil
	})
}

type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

func (s *Service) gameJobs(ctx context.Context, gameID multiplayerdomain.GameID, states ...string) ([]riverJobRow, error) {
	q := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", reportGameKind).
		Where("args->>'game_id' = ?", gameID.String())
	if len(states) > 0 {
		q = q.Where("state IN (?)", bun.In(states))
	}

	var jobs []riverJobRow
	err := q.Order("scheduled_at ASC NULLS LAST", "created_at ASC").Scan(ctx, &jobs)
	return jobs, err
}

// CancelGameJobs cancels report jobs of a game that have not started.
func (s *Service) CancelGameJobs(ctx context.Context, gameID multiplayerdomain.GameID) error {
	return s.record(ctx, "cancel_game_jobs", func() error {
		jobs, err := s.gameJobs(ctx, gameID, "available", "scheduled", "retryable")
		if err != nil {
			return fmt.Errorf("failed to query jobs for cancellation: %w", err)
		}

		cancelled := 0
		for _, job := range jobs {
			if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
				s.logger.WarnContext(ctx, "Failed to cancel job",
					attr.Int64("job_id", job.ID),
					attr.Error(err),
				)
				continue
			}
			cancelled++
		}

		s.logger.InfoContext(ctx, "Game jobs cancelled",
			attr.GameID(gameID),
			attr.Int("total_found", len(jobs)),
			attr.Int("cancelled_count", cancelled),
		)
		if cancelled != len(jobs) {
			return fmt.Errorf("cancelled %d of %d jobs", cancelled, len(jobs))
		}
		return nil
	})
}

// GetQueuedJobs returns every report job of a game.
func (s *Service) GetQueuedJobs(ctx context.Context, gameID multiplayerdomain.GameID) ([]JobInfo, error) {
	var result []JobInfo
	err := s.record(ctx, "get_queued_jobs", func() error {
		jobs, err := s.gameJobs(ctx, gameID)
		if err != nil {
			return fmt.Errorf("failed to query queued jobs: %w", err)
		}
		result = make([]JobInfo, len(jobs))
		for i, job := range jobs {
			result[i] = toJobInfo(job)
		}
		return nil
	})
	return result, err
}

func toJobInfo(job riverJobRow) JobInfo {
	scheduledAt := ""
	if job.ScheduledAt != nil {
		scheduledAt = job.ScheduledAt.Format(time.RFC3339)
	}
	gameID, _ := job.Args["game_id"].(float64)
	return JobInfo{
		ID:          job.ID,
		Kind:        job.Kind,
		GameID:      fmt.Sprintf("%d", int64(gameID)),
		State:       job.State,
		ScheduledAt: scheduledAt,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		Attempt:     int(job.Attempt),
		MaxAttempts: int(job.MaxAttempts),
	}
}

// HealthCheck verifies the queue tables are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.record(ctx, "health_check", func() error {
		if s.client == nil {
			return fmt.Errorf("river client is nil")
		}
		var count int
		err := s.db.NewSelect().
			Table("river_job").
			ColumnExpr("COUNT(*)").
			Where("kind = ?", reportGameKind).
			Scan(ctx, &count)
		if err != nil {
			return fmt.Errorf("queue service health check failed: %w", err)
		}
		return nil
	})
}

// record wraps a queue operation with attempt, outcome and duration metrics.
func (s *Service) record(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "river")
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operation, "river", time.Since(start))
	}()

	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Queue operation failed",
			attr.String("operation", operation),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, "river")
		return err
	}
	s.metrics.RecordOperationSuccess(ctx, operation, "river")
	return nil
}
