package observe

import (
	"context"

	"github.com/jonwraymond/healthops/health"
)

// Middleware wraps health checkers with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a checker as safe as the one it wraps.
//   - Context: the span context is passed to the wrapped checker.
//   - Ownership: results pass through unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components become no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Wrap returns a checker that records every run of checker. meta.Name
// defaults to checker.Name().
func (m *Middleware) Wrap(checker health.Checker, meta CheckMeta) health.Checker {
	if meta.Name == "" {
		meta.Name = checker.Name()
	}
	return &observedChecker{
		inner:  checker,
		meta:   meta,
		mw:     m,
		logger: m.logger.WithCheck(meta),
	}
}

type observedChecker struct {
	inner  health.Checker
	meta   CheckMeta
	mw     *Middleware
	logger Logger
}

func (c *observedChecker) Name() string {
	return c.inner.Name()
}

func (c *observedChecker) Check(ctx context.Context) health.Result {
	ctx, span := c.mw.tracer.StartSpan(ctx, c.meta)

	result := c.inner.Check(ctx)
	status := result.Status.String()

	var spanErr error
	if result.Status == health.StatusUnhealthy {
		spanErr = result.Error
		if spanErr == nil {
			spanErr = health.ErrCheckFailed
		}
	}
	c.mw.tracer.EndSpan(span, status, spanErr)
	c.mw.metrics.RecordCheck(ctx, c.meta, status, result.Duration)

	fields := []Field{
		F("status", status),
		F("message", result.Message),
		F("duration_ms", float64(result.Duration.Microseconds())/1000),
	}
	if result.Error != nil {
		fields = append(fields, F("error", result.Error))
	}

	switch result.Status {
	case health.StatusHealthy:
		c.logger.Debug(ctx, "health check completed", fields...)
	case health.StatusDegraded:
		c.logger.Warn(ctx, "health check degraded", fields...)
	default:
		c.logger.Error(ctx, "health check failed", fields...)
	}

	return result
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
