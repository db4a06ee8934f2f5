package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		env      map[string]string
		wantErr  error
	}{
		{"stdout", "stdout", nil, nil},
		{"none", "none", nil, nil},
		{"empty", "", nil, nil},
		{"otlp without endpoint", "otlp", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT": ""}, ErrEndpointNotConfigured},
		{"otlp with endpoint", "otlp", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "http://localhost:4317"}, nil},
		{"jaeger without endpoint", "jaeger", map[string]string{"OTEL_EXPORTER_JAEGER_ENDPOINT": ""}, ErrEndpointNotConfigured},
		{"unknown", "zipkin", nil, ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			exp, err := NewTracingExporter(context.Background(), tt.exporter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewTracingExporter(%q) error = %v, want %v", tt.exporter, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTracingExporter(%q) error = %v", tt.exporter, err)
			}
			if exp == nil {
				t.Errorf("NewTracingExporter(%q) = nil", tt.exporter)
			}
		})
	}
}

func TestNewMetricsReader(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		env      map[string]string
		wantErr  error
	}{
		{"stdout", "stdout", nil, nil},
		{"none", "none", nil, nil},
		{"prometheus", "prometheus", nil, nil},
		{"otlp without endpoint", "otlp", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT": ""}, ErrEndpointNotConfigured},
		{"unknown", "statsd", nil, ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			reader, err := NewMetricsReader(context.Background(), tt.exporter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewMetricsReader(%q) error = %v, want %v", tt.exporter, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsReader(%q) error = %v", tt.exporter, err)
			}
			if reader == nil {
				t.Errorf("NewMetricsReader(%q) = nil", tt.exporter)
			}
		})
	}
}
