// Package health defines the host-facing side of healthops: the tri-state
// Status, the Result a check reports, the Checker interface, and the
// Aggregator that runs many named checks and exposes them over HTTP.
//
// # Statuses
//
// Healthy means the probe completed in time and succeeded. Degraded means
// the dependency answered too slowly, or answered with a marginal condition.
// Unhealthy means the probe failed, could not be configured, or was
// cancelled.
//
// # Aggregating
//
//	agg := health.NewAggregator(health.AggregatorConfig{
//	    Timeout:       10 * time.Second,
//	    MaxConcurrent: 8,
//	})
//	agg.Register("orders-blob", blobCheck)
//	agg.Register("events-db", sqliteCheck)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// mounts /healthz (liveness), /readyz (readiness), /health (JSON report)
// and /health/{name} (one check).
package health
