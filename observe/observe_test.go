package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServiceName: "healthops",
			Version:     "1.0.0",
			Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.0},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     LoggingConfig{Enabled: true, Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"unknown tracing exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, ErrInvalidTracingExporter},
		{"sample pct too high", func(c *Config) { c.Tracing.SamplePct = 1.5 }, ErrInvalidSamplePct},
		{"sample pct negative", func(c *Config) { c.Tracing.SamplePct = -0.1 }, ErrInvalidSamplePct},
		{"unknown metrics exporter", func(c *Config) { c.Metrics.Exporter = "statsd" }, ErrInvalidMetricsExporter},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"disabled sections skip checks", func(c *Config) {
			c.Tracing = TracingConfig{Exporter: "zipkin"}
			c.Metrics = MetricsConfig{Exporter: "statsd"}
			c.Logging = LoggingConfig{Level: "trace"}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.ServiceName != "healthops" {
		t.Errorf("ServiceName = %q, want healthops", cfg.ServiceName)
	}
	if cfg.PrometheusEnabled() {
		t.Error("PrometheusEnabled() = true, want false")
	}

	cfg.Metrics = MetricsConfig{Enabled: true, Exporter: "prometheus"}
	if !cfg.PrometheusEnabled() {
		t.Error("PrometheusEnabled() = false, want true")
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "healthops"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("observer components must be non-nil")
	}
	if _, ok := obs.Logger().(noopLogger); !ok {
		t.Errorf("Logger() = %T, want noopLogger when logging is disabled", obs.Logger())
	}
}

func TestNewObserver_NoneExporters(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "healthops",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 0.5},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "warn"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "healthops"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	mw, err := MiddlewareFromObserver(obs)
	if err != nil || mw == nil {
		t.Errorf("MiddlewareFromObserver() = %v, %v", mw, err)
	}
}
