package health

import "errors"

var (
	// ErrCheckFailed marks a result whose probe completed but reported failure.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a result whose probe did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrDuplicateChecker is returned by Aggregator.Add for a name already in use.
	ErrDuplicateChecker = errors.New("health: checker already registered")
)
