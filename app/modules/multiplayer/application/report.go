package multiplayerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	"github.com/Black-And-White-Club/royale-bot/pkg/results"
	"github.com/uptrace/bun"
)

// ReportResults publishes every reportable not yet reported, in order, and
// records the published items. Items are recorded only once their publication
// is confirmed; when publication stops part way the confirmed prefix is still
// recorded and a *PublishError is returned.
func (s *MultiplayerService) ReportResults(ctx context.Context, gameID multiplayerdomain.GameID, opts ReportOptions) (*ReportOutcome, error) {
	release := s.locks.lock(gameID)
	defer release()

	reportTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ReportOutcome, error], error) {
		return s.reportResultsLogic(ctx, db, gameID, opts)
	}

	result, err := withTelemetry(s, ctx, "ReportResults", gameID.String(), func(ctx context.Context) (results.OperationResult[*ReportOutcome, error], error) {
		return runInTx(s, ctx, reportTx)
	})
	outcome, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}
	if outcome != nil && outcome.publishErr != nil {
		s.logger.ErrorContext(ctx, "Publication stopped, confirmed items recorded",
			attr.ExtractCorrelationID(ctx),
			attr.GameID(gameID),
			attr.Int("published", len(outcome.Published)),
			attr.Error(outcome.publishErr),
		)
		return outcome, outcome.publishErr
	}
	return outcome, nil
}

// reportResultsLogic contains the core logic.
func (s *MultiplayerService) reportResultsLogic(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID, opts ReportOptions) (results.OperationResult[*ReportOutcome, error], error) {
	if err := s.repo.LockGame(ctx, db, int64(gameID)); err != nil {
		return results.OperationResult[*ReportOutcome, error]{}, err
	}

	game, matches, err := s.loadGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return results.FailureResult[*ReportOutcome, error](err), nil
		}
		return results.OperationResult[*ReportOutcome, error]{}, err
	}
	if !game.Status.IsReportable() {
		return results.FailureResult[*ReportOutcome, error](
			fmt.Errorf("%w: status %s", ErrGameNotReportable, game.Status),
		), nil
	}

	view, err := s.compute(ctx, game, matches)
	if err != nil {
		return results.OperationResult[*ReportOutcome, error]{}, err
	}

	outcome := &ReportOutcome{GameID: gameID, Status: game.Status}
	toReport := view.Report.ToBeReported

	if opts.DryRun {
		outcome.Pending = toReport
		return results.SuccessResult[*ReportOutcome, error](outcome), nil
	}

	published, publishErr := s.publishAll(ctx, game, toReport)
	outcome.Published = published

	recorded, err := s.recordReported(ctx, db, gameID, published)
	if err != nil {
		return results.OperationResult[*ReportOutcome, error]{}, err
	}
	outcome.Recorded = recorded

	if publishErr != nil {
		// the transaction still commits the confirmed prefix
		outcome.publishErr = publishErr
		return results.SuccessResult[*ReportOutcome, error](outcome), nil
	}

	if concludedBy(published) && game.Status != multiplayerdomain.GameStatusCompleted {
		if err := s.repo.UpdateStatus(ctx, db, int64(gameID), string(multiplayerdomain.GameStatusCompleted)); err != nil {
			return results.OperationResult[*ReportOutcome, error]{}, err
		}
		outcome.Concluded = true
		outcome.Status = multiplayerdomain.GameStatusCompleted
		s.metrics.RecordGameConcluded(ctx)
		s.logger.InfoContext(ctx, "Game concluded",
			attr.ExtractCorrelationID(ctx),
			attr.GameID(gameID),
		)
	}

	return results.SuccessResult[*ReportOutcome, error](outcome), nil
}

// publishAll publishes items in order and stops at the first failure.
func (s *MultiplayerService) publishAll(ctx context.Context, game multiplayerdomain.Game, items []multiplayerdomain.ReportableContext) ([]multiplayerdomain.ReportableContext, error) {
	published := make([]multiplayerdomain.ReportableContext, 0, len(items))
	for _, item := range items {
		if err := s.publisher.PublishReportable(ctx, game, item); err != nil {
			return published, &PublishError{GameID: game.ID, Published: len(published), Item: item, Err: err}
		}
		s.metrics.RecordReportablePublished(ctx, string(item.Type), item.SubType)
		published = append(published, item)
	}
	return published, nil
}

func (s *MultiplayerService) recordReported(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID, items []multiplayerdomain.ReportableContext) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]multiplayerdb.ReportedItem, 0, len(items))
	for _, item := range items {
		key, err := item.IdentityKey()
		if err != nil {
			return 0, err
		}
		rows = append(rows, multiplayerdb.ReportedItem{
			GameID:     int64(gameID),
			ReportKey:  key.String(),
			Context:    item,
			ReportedAt: now,
		})
	}
	return s.repo.AppendReported(ctx, db, rows)
}

// concludedBy reports whether a final leaderboard is among the items.
func concludedBy(items []multiplayerdomain.ReportableContext) bool {
	for _, item := range items {
		if lb, ok := item.Item.(multiplayerdomain.Leaderboard); ok && lb.IsFinal() {
			return true
		}
	}
	return false
}
