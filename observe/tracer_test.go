package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func traceSpanValid(ctx context.Context) bool {
	return trace.SpanContextFromContext(ctx).IsValid()
}

func TestCheckMeta(t *testing.T) {
	meta := CheckMeta{Name: "orders-blob"}
	if got := meta.SpanName(); got != "health.check.orders-blob" {
		t.Errorf("SpanName() = %q, want health.check.orders-blob", got)
	}
	if err := meta.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (CheckMeta{}).Validate(); !errors.Is(err, ErrMissingCheckName) {
		t.Errorf("Validate() = %v, want ErrMissingCheckName", err)
	}
}

func TestTracer_EndSpanError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := NewTracer(tp.Tracer("test"))

	_, span := tracer.StartSpan(context.Background(), CheckMeta{Name: "db"})
	tracer.EndSpan(span, "unhealthy", errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("error event not recorded")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := newNoopTracer()
	_, span := tracer.StartSpan(context.Background(), CheckMeta{Name: "noop"})
	tracer.EndSpan(span, "healthy", nil)
}
