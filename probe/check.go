package probe

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// Factory builds a client of type C for the mode in opts. Its default
// branch returns Unsupported(opts.Mode).
type Factory[C any] func(ctx context.Context, opts *Options) (C, error)

// ProbeFunc makes one read-only call against client. It should honour ctx;
// a probe that ignores it keeps running in the background after a timeout.
type ProbeFunc[C any] func(ctx context.Context, client C, opts *Options) (Verdict, error)

// Check runs one configured probe. It implements health.Checker.
//
// Contract:
//   - Concurrency: safe for concurrent use; Check holds no mutable state
//     of its own.
//   - Errors: every failure becomes a health.Result; Check never panics.
//   - Context: an already-done ctx short-circuits before any client or
//     probe work; cancellation during the probe is not reported as a timeout.
type Check[C any] struct {
	name    string
	source  OptionsSource
	factory Factory[C]
	probe   ProbeFunc[C]
	settings
}

type settings struct {
	kind     string
	clients  *cache.Clients
	services *Services
	modes    []ModeKind
	params   []string
	byMode   map[ModeKind][]string
	logger   observe.Logger
	breaker  *resilience.CircuitBreaker
	retry    *resilience.Retry
}

// Option configures a Check.
type Option func(*settings)

// WithClients shares a client cache between checks. Without it each check
// gets a private cache.
func WithClients(clients *cache.Clients) Option {
	return func(s *settings) { s.clients = clients }
}

// WithServices sets the registry used by Registry mode.
func WithServices(services *Services) Option {
	return func(s *settings) { s.services = services }
}

// WithModes restricts the creation modes the factory accepts.
func WithModes(kinds ...ModeKind) Option {
	return func(s *settings) { s.modes = kinds }
}

// WithParams names adapter parameters that must be set.
func WithParams(names ...string) Option {
	return func(s *settings) { s.params = names }
}

// WithModeParams names adapter parameters that must be set when the check
// uses the given mode kind.
func WithModeParams(kind ModeKind, names ...string) Option {
	return func(s *settings) {
		if s.byMode == nil {
			s.byMode = make(map[ModeKind][]string)
		}
		s.byMode[kind] = names
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger observe.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithCircuitBreaker stops probing while the breaker is open. Unhealthy
// results count as failures; Degraded ones and cancellations do not.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(s *settings) { s.breaker = cb }
}

// WithRetry retries failed client construction. Probes are never retried.
func WithRetry(r *resilience.Retry) Option {
	return func(s *settings) { s.retry = r }
}

// WithKind records the adapter kind for logs and telemetry.
func WithKind(kind string) Option {
	return func(s *settings) { s.kind = kind }
}

// New creates a check named name. Options are looked up in source on every
// run, so a reload takes effect without rebuilding the check.
func New[C any](name string, source OptionsSource, factory Factory[C], probe ProbeFunc[C], opts ...Option) *Check[C] {
	c := &Check[C]{
		name:    name,
		source:  source,
		factory: factory,
		probe:   probe,
	}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.clients == nil {
		c.clients = cache.NewClients()
	}
	if c.logger == nil {
		c.logger = observe.NopLogger()
	}
	return c
}

// Name returns the check name.
func (c *Check[C]) Name() string { return c.name }

// Kind returns the adapter kind given with WithKind.
func (c *Check[C]) Kind() string { return c.kind }

// Validate validates the options currently bound to the check.
func (c *Check[C]) Validate() error {
	opts, ok := c.source.Lookup(c.name)
	if !ok {
		return &ValidationError{Name: c.name, Message: MsgMissingConfiguration}
	}
	return c.validate(opts)
}

func (c *Check[C]) validate(opts *Options) error {
	if err := ValidateFor[C](c.name, opts, c.services, c.modes...); err != nil {
		return err
	}
	if err := ValidateParams(c.name, opts, c.params...); err != nil {
		return err
	}
	return ValidateParams(c.name, opts, c.byMode[opts.Mode.Kind()]...)
}

// Check runs the probe once. Duration and Timestamp are set on every
// result.
func (c *Check[C]) Check(ctx context.Context) health.Result {
	start := time.Now()
	result := c.run(ctx)
	result.Timestamp = start
	result.Duration = time.Since(start)
	return result
}

func (c *Check[C]) run(ctx context.Context) health.Result {
	if err := ctx.Err(); err != nil {
		return health.Unhealthy(MsgCancellation, err)
	}

	opts, ok := c.source.Lookup(c.name)
	if !ok || opts == nil {
		return health.Unhealthy(MsgMissingConfiguration, ErrMissingConfiguration)
	}
	if err := c.validate(opts); err != nil {
		return health.Unhealthy(err.Error(), err)
	}

	logger := c.logger.WithCheck(observe.CheckMeta{Name: c.name, Kind: c.kind, Mode: modeName(opts.Mode)})

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return health.Unhealthy(MsgCircuitOpen, err)
		}
	}

	result := c.attempt(ctx, opts, logger)

	if c.breaker != nil {
		c.breaker.Record(breakerOutcome(result))
	}
	return result
}

func (c *Check[C]) attempt(ctx context.Context, opts *Options, logger observe.Logger) health.Result {
	client, err := c.acquire(ctx, opts, logger)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return health.Unhealthy(MsgCancellation, ctxErr)
		}
		logger.Error(ctx, "client acquisition failed", observe.F("error", err))
		return health.Unhealthy(MsgUnexpectedError, err)
	}

	out, err := resilience.Race(ctx, opts.Timeout, func(ctx context.Context) (Verdict, error) {
		return guard(func() (Verdict, error) { return c.probe(ctx, client, opts) })
	})
	if err == nil && out.Err != nil {
		// A probe that returns because the caller gave up was cancelled, not broken.
		err = ctx.Err()
	}
	if err != nil {
		return health.Unhealthy(MsgCancellation, err)
	}

	result := MapStatus(out.Completed, out.Value, out.Err)
	switch {
	case !out.Completed:
		logger.Warn(ctx, "probe timed out", observe.F("timeout_ms", opts.Timeout.Milliseconds()))
	case out.Err != nil:
		logger.Error(ctx, "probe failed", observe.F("error", out.Err))
	}
	return result
}

// acquire returns the client for this check. Registry mode reads Services
// and never touches the cache.
func (c *Check[C]) acquire(ctx context.Context, opts *Options, logger observe.Logger) (C, error) {
	var zero C

	if reg, ok := opts.Mode.(Registry); ok {
		client, found := Resolve[C](c.services, reg.Key)
		if !found {
			return zero, notRegistered[C](c.name, reg.Key)
		}
		return client, nil
	}

	v, err := c.clients.GetOrCreate(ctx, c.name, func(ctx context.Context) (any, error) {
		logger.Debug(ctx, "creating client")
		client, err := resilience.Do(ctx, c.retry, func(ctx context.Context) (C, error) {
			return guard(func() (C, error) { return c.factory(ctx, opts) })
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	if err != nil {
		return zero, err
	}

	client, ok := v.(C)
	if !ok {
		return zero, fmt.Errorf("%w: cached %T, want %s", ErrClientType, v, reflect.TypeFor[C]())
	}
	return client, nil
}

// breakerOutcome is the error a circuit breaker should record for result.
func breakerOutcome(result health.Result) error {
	if result.Status != health.StatusUnhealthy {
		return nil
	}
	if errors.Is(result.Error, context.Canceled) || errors.Is(result.Error, context.DeadlineExceeded) {
		return nil
	}
	// The run straddled a reload; the next one uses the new options.
	if errors.Is(result.Error, cache.ErrEvicted) {
		return nil
	}
	if result.Error == nil {
		return health.ErrCheckFailed
	}
	return result.Error
}

func guard[T any](op func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return op()
}

var _ health.Checker = (*Check[any])(nil)
