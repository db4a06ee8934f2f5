// Package observe provides the telemetry for healthops: an OpenTelemetry
// Observer built from config, a JSON Logger that redacts credential fields,
// and a Middleware that wraps any health.Checker with a span, run counters,
// a duration histogram and one log line per run.
package observe
