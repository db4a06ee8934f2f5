package health_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/healthops/health"
)

func ExampleNewCheckerFunc() {
	blob := health.NewCheckerFunc("orders-blob", func(ctx context.Context) health.Result {
		return health.Healthy("Healthy")
	})

	result := blob.Check(context.Background())

	fmt.Println("Checker name:", blob.Name())
	fmt.Println("Status:", result.Status)
	fmt.Println("Message:", result.Message)
	// Output:
	// Checker name: orders-blob
	// Status: healthy
	// Message: Healthy
}

func ExampleUnhealthy() {
	result := health.Unhealthy("Unexpected error.", errors.New("connection refused"))

	fmt.Println("Status:", result.Status)
	fmt.Println("Message:", result.Message)
	fmt.Println("Error:", result.Error)
	// Output:
	// Status: unhealthy
	// Message: Unexpected error.
	// Error: connection refused
}

func ExampleWorst() {
	fmt.Println(health.Worst(health.StatusHealthy, health.StatusDegraded))
	fmt.Println(health.Worst(health.StatusUnhealthy, health.StatusDegraded))
	// Output:
	// degraded
	// unhealthy
}

func ExampleAggregator_CheckAll() {
	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 5 * time.Second})
	agg.Register("blob", health.NewCheckerFunc("blob", func(ctx context.Context) health.Result {
		return health.Healthy("Healthy")
	}))
	agg.Register("influx", health.NewCheckerFunc("influx", func(ctx context.Context) health.Result {
		return health.Degraded("Degraded")
	}))

	results := agg.CheckAll(context.Background())

	fmt.Println("blob:", results["blob"].Status)
	fmt.Println("influx:", results["influx"].Status)
	fmt.Println("overall:", agg.OverallStatus(results))
	// Output:
	// blob: healthy
	// influx: degraded
	// overall: degraded
}

func ExampleRegisterHandlers() {
	agg := health.NewAggregator()
	agg.Register("blob", health.NewCheckerFunc("blob", func(ctx context.Context) health.Result {
		return health.Unhealthy("Container `orders` does not exist.", health.ErrCheckFailed)
	}))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		fmt.Println(path, rec.Code, rec.Body.String())
	}
	// Output:
	// /healthz 200 OK
	// /readyz 503 UNHEALTHY
}
