package observe_test

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

func ExampleCheckMeta_SpanName() {
	meta := observe.CheckMeta{Name: "orders-blob", Kind: "azureblob"}
	fmt.Println(meta.SpanName())
	// Output:
	// health.check.orders-blob
}

func ExampleMiddleware_Wrap() {
	mw := observe.NewMiddleware(nil, nil, observe.NopLogger())

	checker := mw.Wrap(health.NewCheckerFunc("events-db", func(ctx context.Context) health.Result {
		return health.Healthy("Healthy")
	}), observe.CheckMeta{Kind: "sqlite"})

	result := checker.Check(context.Background())
	fmt.Println(checker.Name(), result.Status)
	// Output:
	// events-db healthy
}

func ExampleConfig_Validate() {
	cfg := observe.DefaultConfig()
	cfg.Metrics = observe.MetricsConfig{Enabled: true, Exporter: "statsd"}

	fmt.Println(cfg.Validate())
	// Output:
	// observe: invalid metrics exporter: "statsd"
}

func ExampleNewLoggerWithWriter() {
	logger := observe.NewLoggerWithWriter("error", os.Stdout)

	// Below the configured level: nothing is written.
	logger.Info(context.Background(), "health check completed")
	fmt.Println("done")
	// Output:
	// done
}
