package multiplayerservice

import (
	"context"
	"errors"
	"fmt"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/Black-And-White-Club/royale-bot/pkg/results"
	"github.com/uptrace/bun"
)

// ComputeResults loads a game and computes its results without side effects.
func (s *MultiplayerService) ComputeResults(ctx context.Context, gameID multiplayerdomain.GameID) (*ResultsView, error) {
	computeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ResultsView, error], error) {
		return s.computeResultsLogic(ctx, db, gameID)
	}

	result, err := withTelemetry(s, ctx, "ComputeResults", gameID.String(), func(ctx context.Context) (results.OperationResult[*ResultsView, error], error) {
		return runInTx(s, ctx, computeTx)
	})
	return unwrap(result, err)
}

// computeResultsLogic contains the core logic.
func (s *MultiplayerService) computeResultsLogic(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID) (results.OperationResult[*ResultsView, error], error) {
	game, matches, err := s.loadGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return results.FailureResult[*ResultsView, error](err), nil
		}
		return results.OperationResult[*ResultsView, error]{}, err
	}

	view, err := s.compute(ctx, game, matches)
	if err != nil {
		return results.OperationResult[*ResultsView, error]{}, err
	}
	return results.SuccessResult[*ResultsView, error](view), nil
}

// compute runs the pure results pipeline over a loaded game.
func (s *MultiplayerService) compute(ctx context.Context, game multiplayerdomain.Game, matches []multiplayerdomain.RealMatch) (*ResultsView, error) {
	res, err := multiplayerdomain.BuildReportData(game, matches)
	if err != nil {
		return nil, fmt.Errorf("failed to build report data: %w", err)
	}

	if after := res.Elimination.HaltedAfter; after != nil {
		s.logger.DebugContext(ctx, "Life tracking stopped, fewer than two teams alive",
			attr.ExtractCorrelationID(ctx),
			attr.GameID(game.ID),
			attr.String("after_round", after.String()),
		)
	}
	s.metrics.RecordRoundsEvaluated(ctx, res.Completed, len(res.VirtualMatches)-res.Completed)

	report, err := multiplayerdomain.ItemsToBeReported(res.Reports, game)
	if err != nil {
		return nil, fmt.Errorf("failed to diff reportables: %w", err)
	}

	return &ResultsView{Game: game, Results: res, Report: report}, nil
}

// GetGameStanding returns the current standing of a game.
func (s *MultiplayerService) GetGameStanding(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error) {
	standingTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*multiplayerdomain.GameStanding, error], error) {
		view, err := s.computeResultsLogic(ctx, db, gameID)
		if err != nil || view.IsFailure() {
			return results.OperationResult[*multiplayerdomain.GameStanding, error]{Failure: view.Failure}, err
		}
		standing := (*view.Success).Results.Standing
		return results.SuccessResult[*multiplayerdomain.GameStanding, error](&standing), nil
	}

	result, err := withTelemetry(s, ctx, "GetGameStanding", gameID.String(), func(ctx context.Context) (results.OperationResult[*multiplayerdomain.GameStanding, error], error) {
		return runInTx(s, ctx, standingTx)
	})
	return unwrap(result, err)
}

// ListReportableGames returns games whose results are still being reported.
func (s *MultiplayerService) ListReportableGames(ctx context.Context) ([]multiplayerdomain.GameID, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]multiplayerdomain.GameID, error], error) {
		statuses := multiplayerdomain.ReportableStatuses()
		values := make([]string, 0, len(statuses))
		for _, st := range statuses {
			values = append(values, string(st))
		}

		ids, err := s.repo.ListGameIDsByStatus(ctx, db, values...)
		if err != nil {
			return results.OperationResult[[]multiplayerdomain.GameID, error]{}, err
		}
		out := make([]multiplayerdomain.GameID, 0, len(ids))
		for _, id := range ids {
			out = append(out, multiplayerdomain.GameID(id))
		}
		return results.SuccessResult[[]multiplayerdomain.GameID, error](out), nil
	}

	result, err := withTelemetry(s, ctx, "ListReportableGames", "all", func(ctx context.Context) (results.OperationResult[[]multiplayerdomain.GameID, error], error) {
		return runInTx(s, ctx, listTx)
	})
	return unwrap(result, err)
}
