// Package exporters builds the OpenTelemetry exporters named in the observe
// section of the healthops configuration.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrUnknownExporter is returned for an exporter name not listed below.
	ErrUnknownExporter = errors.New("exporters: unknown exporter")

	// ErrEndpointNotConfigured is returned when an OTLP exporter is selected
	// without its endpoint environment variable.
	ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")
)

// endpoint returns the first non-empty environment variable in keys.
func endpoint(keys ...string) (string, error) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %v", ErrEndpointNotConfigured, keys)
}

// NewTracingExporter creates a span exporter.
// Supported exporters: stdout, otlp, jaeger, none.
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))

	case "otlp":
		if _, err := endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)

	case "jaeger":
		// Jaeger ingests OTLP natively.
		if _, err := endpoint("OTEL_EXPORTER_JAEGER_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)

	case "none", "":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
}

// NewMetricsReader creates a metrics reader.
// Supported exporters: stdout, otlp, prometheus, none. The prometheus reader
// registers with the default prometheus registerer, which promhttp.Handler
// serves.
func NewMetricsReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	switch name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "otlp":
		if _, err := endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "prometheus":
		exp, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, nil

	case "none", "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
}
