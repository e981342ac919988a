package multiplayermetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "ReportResults", "MultiplayerService")
	m.RecordOperationSuccess(ctx, "ReportResults", "MultiplayerService")
	m.RecordOperationDuration(ctx, "ReportResults", "MultiplayerService", time.Millisecond)
	m.RecordReportablePublished(ctx, "leaderboard", "battle_royale")
	m.RecordReportablePublished(ctx, "leaderboard", "battle_royale")
	m.RecordGameConcluded(ctx)

	pm := m.(*prometheusMetrics)
	require.Equal(t, 1.0, testutil.ToFloat64(pm.attempts.WithLabelValues("ReportResults", "MultiplayerService")))
	require.Equal(t, 2.0, testutil.ToFloat64(pm.published.WithLabelValues("leaderboard", "battle_royale")))
	require.Equal(t, 1.0, testutil.ToFloat64(pm.concluded))

	_, err = NewPrometheus(reg)
	require.Error(t, err, "registering twice on one registry must fail")
}
