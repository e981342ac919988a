// Package multiplayermetrics records multiplayer results metrics.
package multiplayermetrics

import (
	"context"
	"time"
)

// Metrics is implemented by the Prometheus recorder and the no-op recorder.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	// RecordReportablePublished counts one published item by reportable type and subtype.
	RecordReportablePublished(ctx context.Context, reportableType, subType string)
	// RecordRoundsEvaluated records how many rounds of a game one pass completed and left pending.
	RecordRoundsEvaluated(ctx context.Context, completed, pending int)
	// RecordGameConcluded counts games whose final leaderboard was reported.
	RecordGameConcluded(ctx context.Context)
}
