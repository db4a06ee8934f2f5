package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricCheckTotal     = "health.check.total"
	MetricCheckUnhealthy = "health.check.unhealthy"
	MetricCheckDuration  = "health.check.duration_ms"
)

// Metrics records health check runs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one run with its final status.
	RecordCheck(ctx context.Context, meta CheckMeta, status string, duration time.Duration)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	unhealthyCount metric.Int64Counter
	durationHist   metric.Float64Histogram
}

// NewMetrics creates the check instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricCheckTotal,
		metric.WithDescription("Total number of health check runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthyCount, err := meter.Int64Counter(
		MetricCheckUnhealthy,
		metric.WithDescription("Health check runs that reported unhealthy"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricCheckDuration,
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		unhealthyCount: unhealthyCount,
		durationHist:   durationHist,
	}, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, status string, duration time.Duration) {
	attrs := append(meta.attributes(), attribute.String("check.status", status))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if status == "unhealthy" {
		m.unhealthyCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordCheck(ctx context.Context, meta CheckMeta, status string, duration time.Duration) {
}
