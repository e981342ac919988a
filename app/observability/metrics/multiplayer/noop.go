package multiplayermetrics

import (
	"context"
	"time"
)

type noop struct{}

// NewNoop returns a Metrics that records nothing.
func NewNoop() Metrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string) {}
func (noop) RecordOperationSuccess(context.Context, string, string) {}
func (noop) RecordOperationFailure(context.Context, string, string) {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordReportablePublished(context.Context, string, string) {}
func (noop) RecordRoundsEvaluated(context.Context, int, int) {}
func (noop) RecordGameConcluded(context.Context) {}
