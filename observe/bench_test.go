package observe

import (
	"context"
	"io"
	"testing"

	"github.com/jonwraymond/healthops/health"
)

// BenchmarkLogger_Info measures JSON log encoding.
func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard).WithCheck(CheckMeta{Name: "orders-blob", Kind: "azureblob"})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "health check completed", F("status", "healthy"), F("duration_ms", 1.5))
	}
}

// BenchmarkLogger_Filtered measures a call below the configured level.
func BenchmarkLogger_Filtered(b *testing.B) {
	logger := NewLoggerWithWriter("error", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "dropped")
	}
}

// BenchmarkMiddleware_Noop measures wrapper overhead with no-op telemetry.
func BenchmarkMiddleware_Noop(b *testing.B) {
	checker := NewMiddleware(nil, nil, nil).Wrap(
		health.NewCheckerFunc("bench", func(ctx context.Context) health.Result {
			return health.Healthy("Healthy")
		}),
		CheckMeta{Kind: "sqlite"},
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = checker.Check(ctx)
	}
}
