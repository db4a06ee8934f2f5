package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded wraps the last error once retries are exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when no token arrived in time.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)
