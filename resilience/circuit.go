package resilience

import (
	"context"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets every probe through.
	StateClosed State = iota
	// StateOpen short-circuits probes until ResetTimeout elapses.
	StateOpen
	// StateHalfOpen lets a limited number of trial probes through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that open the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a trial.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of trials allowed while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called with the lock held; keep it short.
	OnStateChange func(from, to State)

	// IsFailure decides whether a recorded error counts against the circuit.
	// Default: every non-nil error.
	IsFailure func(err error) bool
}

// CircuitBreaker stops calling a dependency that keeps failing.
//
// Callers either wrap an operation with Execute, or split the two halves
// with Allow before the call and Record after it.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	halfOpenCount int
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs op if the circuit admits it and records the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.Allow(); err != nil {
		return err
	}

	err := op(ctx)
	cb.Record(err)
	return err
}

// Allow reports whether a call may proceed. It returns ErrCircuitOpen when
// the circuit is open or the half-open trial budget is spent. Every nil
// return must be followed by exactly one Record.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}
	return nil
}

// Record feeds the outcome of an admitted call back into the circuit.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := cb.config.IsFailure(err)
	from := cb.state

	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.config.MaxFailures {
			cb.state = StateOpen
		}

	case StateHalfOpen:
		if failed {
			cb.lastFailure = time.Now()
			cb.state = StateOpen
			break
		}
		cb.state = StateClosed
		cb.failures = 0
	}

	if from != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, cb.state)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset closes the circuit and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCount = 0

	if from != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, StateClosed)
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	LastFailure time.Time
}
