package multiplayermetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "royale"
	subsystem = "multiplayer"
)

type prometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	published *prometheus.CounterVec
	rounds    *prometheus.HistogramVec
	concluded prometheus.Counter
}

// NewPrometheus registers the multiplayer collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (Metrics, error) {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_failure_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reportables_published_total",
			Help:      "Reportable items published to message targets.",
		}, []string{"type", "subtype"}),
		rounds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rounds_per_pass",
			Help:      "Rounds seen by one results pass.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}, []string{"state"}),
		concluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "games_concluded_total",
			Help:      "Games whose final leaderboard was reported.",
		}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.durations, m.published, m.rounds, m.concluded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordReportablePublished(_ context.Context, reportableType, subType string) {
	m.published.WithLabelValues(reportableType, subType).Inc()
}

func (m *prometheusMetrics) RecordRoundsEvaluated(_ context.Context, completed, pending int) {
	m.rounds.WithLabelValues("completed").Observe(float64(completed))
	m.rounds.WithLabelValues("pending").Observe(float64(pending))
}

func (m *prometheusMetrics) RecordGameConcluded(context.Context) {
	m.concluded.Inc()
}
