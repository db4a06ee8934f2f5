package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CheckMeta identifies a health check for telemetry purposes.
type CheckMeta struct {
	Name string // Check name (required)
	Kind string // Adapter kind, e.g. azureblob (optional)
	Mode string // Client creation mode (optional)
}

// SpanName returns the span name for this check: health.check.<name>.
func (m CheckMeta) SpanName() string {
	return "health.check." + m.Name
}

// Validate reports whether the metadata is usable.
func (m CheckMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingCheckName
	}
	return nil
}

func (m CheckMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("check.name", m.Name)}
	if m.Kind != "" {
		attrs = append(attrs, attribute.String("check.kind", m.Kind))
	}
	if m.Mode != "" {
		attrs = append(attrs, attribute.String("check.mode", m.Mode))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with check-scoped spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one check run.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span with the check's status. A non-nil err marks
	// the span as failed.
	EndSpan(span trace.Span, status string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("check.status", status))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, status string, err error) {
	span.End()
}
