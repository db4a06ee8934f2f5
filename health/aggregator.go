package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/healthops/resilience"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout bounds a whole CheckAll run. Checks still running when it
	// expires are reported as degraded.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxConcurrent limits how many checks run at once. Zero means no limit.
	MaxConcurrent int
}

// Aggregator runs a set of named checkers and folds their results.
type Aggregator struct {
	config   AggregatorConfig
	bulkhead *resilience.Bulkhead

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates an aggregator. The optional config overrides defaults.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: 30 * time.Second}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 30 * time.Second
		}
	}

	a := &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
	if cfg.MaxConcurrent > 0 {
		a.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.MaxConcurrent})
	}
	return a
}

// Register adds checker under name, replacing any checker already there.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Add registers checker under its own name and fails if the name is taken.
func (a *Aggregator) Add(checker Checker) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := checker.Name()
	if _, exists := a.checkers[name]; exists {
		return ErrDuplicateChecker
	}
	a.order = append(a.order, name)
	a.checkers[name] = checker
	return nil
}

// Unregister removes the checker registered under name.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		return
	}
	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs the checker registered under name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	return a.runCheck(ctx, checker), nil
}

// CheckAll runs every registered checker concurrently and returns the
// results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	return results
}

// OverallStatus folds results into one status: unhealthy beats degraded
// beats healthy. An empty set is healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, result := range results {
		status = Worst(status, result.Status)
	}
	return status
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	if a.bulkhead != nil {
		if err := a.bulkhead.Acquire(ctx); err != nil {
			return interrupted(ctx, start, err)
		}
		defer a.bulkhead.Release()
	}

	resultCh := make(chan Result, 1)
	go func() {
		result := checker.Check(ctx)
		if result.Duration == 0 {
			result.Duration = time.Since(start)
		}
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return interrupted(ctx, start, ctx.Err())
	}
}

// interrupted builds the result for a check that never reported back.
func interrupted(ctx context.Context, start time.Time, err error) Result {
	var result Result
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = Degraded("check timed out").WithError(ErrCheckTimeout)
	default:
		result = Unhealthy("Cancellation requested.", err)
	}
	result.Timestamp = start
	result.Duration = time.Since(start)
	return result
}

// Checker exposes the aggregator as a single Checker named "aggregate".
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	var message string
	switch status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	default:
		message = "some checks failed"
	}

	return Result{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
