package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/observe"
)

var (
	// ErrInvalidDocument wraps every structural problem in a configuration file.
	ErrInvalidDocument = errors.New("config: invalid document")

	// ErrUnknownCheck is returned when a name has no check configured.
	ErrUnknownCheck = errors.New("config: unknown check")
)

var validate = validator.New()

// Document is the healthops configuration file.
type Document struct {
	Observe observe.Config            `mapstructure:"observe"`
	Server  ServerConfig              `mapstructure:"server"`
	Secrets map[string]map[string]any `mapstructure:"secrets"`
	Checks  map[string]CheckConfig    `mapstructure:"checks" validate:"dive"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`

	// TimeoutMS bounds one aggregated run of every check.
	TimeoutMS int `mapstructure:"timeout_ms" validate:"gte=0"`

	// MaxConcurrent bounds checks running at once; 0 means unbounded.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"construct_retry"`
	Circuit   CircuitConfig   `mapstructure:"circuit"`
}

// RateLimitConfig limits requests to the health endpoints. Zero RPS
// disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

// RetryConfig retries client construction. Zero attempts disables retry.
type RetryConfig struct {
	MaxAttempts    int `mapstructure:"max_attempts" validate:"gte=0,lte=10"`
	InitialDelayMS int `mapstructure:"initial_delay_ms" validate:"gte=0"`
}

// CircuitConfig gives every check its own circuit breaker. Zero
// MaxFailures disables the breakers.
type CircuitConfig struct {
	MaxFailures    int `mapstructure:"max_failures" validate:"gte=0"`
	ResetTimeoutMS int `mapstructure:"reset_timeout_ms" validate:"gte=0"`
}

// Timeout returns the aggregate timeout.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Default returns the document used for keys a file leaves out.
func Default() Document {
	return Document{
		Observe: observe.DefaultConfig(),
		Server: ServerConfig{
			Addr:      ":8080",
			TimeoutMS: 30000,
		},
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a YAML document over Default and validates its structure.
// Unknown top-level or section keys are errors; unknown keys inside a
// check become adapter parameters.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	doc := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks field constraints and the observe section.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, describe(err))
	}
	if err := d.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	for name := range d.Checks {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: check name cannot be blank", ErrInvalidDocument)
		}
	}
	return nil
}

// CheckNames returns the configured check names in sorted order.
func (d *Document) CheckNames() []string {
	names := make([]string, 0, len(d.Checks))
	for name := range d.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// describe flattens validator errors into one line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
