package multiplayerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	multiplayermetrics "github.com/Black-And-White-Club/royale-bot/app/observability/metrics/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "MultiplayerService"

// MultiplayerService implements the Service interface.
type MultiplayerService struct {
	repo      multiplayerdb.Repository
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   multiplayermetrics.Metrics
	tracer    trace.Tracer
	db        *bun.DB
	locks     *gameLocks
}

// NewMultiplayerService creates a new MultiplayerService.
func NewMultiplayerService(
	repo multiplayerdb.Repository,
	publisher ReportPublisher,
	logger *slog.Logger,
	metrics multiplayermetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *MultiplayerService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = multiplayermetrics.NewNoop()
	}
	return &MultiplayerService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		locks:     newGameLocks(),
	}
}

// loadGame reads the game aggregate with its reported history and matches.
func (s *MultiplayerService) loadGame(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID) (multiplayerdomain.Game, []multiplayerdomain.RealMatch, error) {
	row, err := s.repo.GetGame(ctx, db, int64(gameID))
	if err != nil {
		if errors.Is(err, multiplayerdb.ErrNotFound) {
			return multiplayerdomain.Game{}, nil, ErrGameNotFound
		}
		return multiplayerdomain.Game{}, nil, fmt.Errorf("failed to load game: %w", err)
	}

	reported, err := s.repo.ListReported(ctx, db, int64(gameID))
	if err != nil {
		return multiplayerdomain.Game{}, nil, fmt.Errorf("failed to load reported history: %w", err)
	}

	rows, err := s.repo.ListMatches(ctx, db, int64(gameID))
	if err != nil {
		return multiplayerdomain.Game{}, nil, fmt.Errorf("failed to load matches: %w", err)
	}
	matches := make([]multiplayerdomain.RealMatch, 0, len(rows))
	for i := range rows {
		matches = append(matches, rows[i].ToDomain())
	}

	return row.ToDomain(reported), matches, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *MultiplayerService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *MultiplayerService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		result, err = fn(ctx, tx)
		return err
	})
	return result, err
}

// unwrap turns an operation result into the public (value, error) pair.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// gameLocks serialises report passes per game within the process.
type gameLocks struct {
	mu    sync.Mutex
	locks map[multiplayerdomain.GameID]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[multiplayerdomain.GameID]*gameLock)}
}

// lock blocks until the game's lock is held and returns its release func.
func (l *gameLocks) lock(id multiplayerdomain.GameID) func() {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
