package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOptions is wrapped by every *ValidationError.
	ErrInvalidOptions = errors.New("probe: invalid options")

	// ErrMissingConfiguration is attached to results for names with no options.
	ErrMissingConfiguration = errors.New("probe: missing configuration")

	// ErrModeNotSupported is returned by factories for a mode they cannot build.
	ErrModeNotSupported = errors.New("probe: mode not supported")

	// ErrClientType is returned when a cached client has the wrong type.
	ErrClientType = errors.New("probe: unexpected client type")

	// ErrPanic wraps a panic recovered from a factory or probe.
	ErrPanic = errors.New("probe: panic")
)

// Result messages.
const (
	MsgHealthy              = "Healthy"
	MsgDegraded             = "Degraded"
	MsgUnexpectedError      = "Unexpected error."
	MsgCancellation         = "Cancellation requested."
	MsgMissingConfiguration = "Missing configuration."
	MsgCircuitOpen          = "Circuit open."
)

// ValidationError reports options that cannot be used. Message is the
// complete user-facing text.
type ValidationError struct {
	Name    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidOptions }

func invalid(name, format string, args ...any) *ValidationError {
	return &ValidationError{Name: name, Message: fmt.Sprintf(format, args...)}
}

func unsupportedMode(value string) *ValidationError {
	return invalid("", "The mode `%s` is not supported.", value)
}

// Unsupported is what a factory returns from its default branch.
func Unsupported(m Mode) error {
	return fmt.Errorf("%w: %s", ErrModeNotSupported, modeName(m))
}
