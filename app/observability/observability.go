// Package observability builds the logger, tracer and metrics registry shared
// by every module.
package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects how observability components are built.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Provider holds the logging backend.
type Provider struct {
	Logger *slog.Logger
}

// Registry holds tracing and metrics handles.
type Registry struct {
	Tracer     trace.Tracer
	Prometheus *prometheus.Registry
}

// Observability groups everything a module needs to log, trace and record metrics.
type Observability struct {
	Provider Provider
	Registry Registry
}

// Init builds JSON logging on stdout, the global tracer and a fresh Prometheus
// registry with process and Go collectors.
func Init(cfg Config) Observability {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Provider: Provider{Logger: logger},
		Registry: Registry{
			Tracer:     otel.Tracer(cfg.ServiceName),
			Prometheus: reg,
		},
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
