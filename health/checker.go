package health

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the tri-state outcome of a health check.
type Status int

const (
	// StatusHealthy means the probe completed in time and reported success.
	StatusHealthy Status = iota
	// StatusDegraded means the probe was slow or reported a marginal condition.
	StatusDegraded
	// StatusUnhealthy means the probe failed, was cancelled, or could not run.
	StatusUnhealthy
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus parses the output of Status.String, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "healthy":
		return StatusHealthy, nil
	case "degraded":
		return StatusDegraded, nil
	case "unhealthy":
		return StatusUnhealthy, nil
	default:
		return StatusUnhealthy, fmt.Errorf("health: unknown status %q", s)
	}
}

// Worst returns the more severe of two statuses.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Result is what a Checker reports for one invocation.
type Result struct {
	// Status is the health status.
	Status Status

	// Message is a short human-readable explanation.
	Message string

	// Details carries adapter-specific metadata.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check started.
	Timestamp time.Time

	// Error is the captured error, if any.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result carrying err.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithDetails returns a copy of r with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of r with the duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// WithError returns a copy of r with the error set.
func (r Result) WithError(err error) Result {
	r.Error = err
	return r
}

// Checker is implemented by anything that can report its health.
//
// Contract:
// - Concurrency: Check may be called concurrently.
// - Context: Check must return promptly once ctx is done.
// - Errors: failures are reported through Result, never by panicking.
type Checker interface {
	// Name returns the check name.
	Name() string

	// Check runs the check once.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a named Checker backed by fn.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the check name.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check calls the wrapped function.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
