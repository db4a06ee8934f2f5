package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry with backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, the first included.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier grows the delay after each attempt. 1 keeps it constant.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% to each delay.
	Jitter bool

	// RetryIf decides whether an error is worth another attempt.
	// Default: every non-nil error.
	RetryIf func(err error) bool

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry repeats a failing operation with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry policy.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs op until it succeeds, returns a non-retryable error, or the
// attempts run out. Exhaustion wraps the last error with ErrMaxRetriesExceeded.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// Do is Execute for operations that produce a value, such as building a
// client. A nil policy runs op once.
func Do[T any](ctx context.Context, r *Retry, op func(context.Context) (T, error)) (T, error) {
	if r == nil {
		return op(ctx)
	}

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !r.config.RetryIf(err) {
			return zero, err
		}
		if attempt >= r.config.MaxAttempts {
			return zero, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Retry) delay(attempt int) time.Duration {
	d := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if r.config.Jitter && d >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}
