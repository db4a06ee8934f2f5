package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonwraymond/healthops/adapters"
	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/probe"
	"github.com/jonwraymond/healthops/resilience"
	"github.com/jonwraymond/healthops/secret"
)

// runtime wires a configuration document into running checks.
type runtime struct {
	doc      *config.Document
	store    *config.Store
	clients  *cache.Clients
	services *probe.Services
	resolver *secret.Resolver
	observer observe.Observer
	logger   observe.Logger
	mw       *observe.Middleware
	agg      *health.Aggregator
}

// newRuntime loads path and registers every configured check.
func newRuntime(ctx context.Context, path string) (*runtime, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	obs, err := observe.NewObserver(ctx, doc.Observe)
	if err != nil {
		return nil, err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	rt := &runtime{
		doc:      &config.Document{},
		store:    config.NewStore(),
		clients:  cache.NewClients(),
		services: probe.NewServices(),
		observer: obs,
		logger:   obs.Logger(),
		mw:       mw,
		agg: health.NewAggregator(health.AggregatorConfig{
			Timeout:       doc.Server.Timeout(),
			MaxConcurrent: doc.Server.MaxConcurrent,
		}),
	}
	if _, err := rt.apply(ctx, doc); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return rt, nil
}

// apply makes doc the live configuration. Checks whose mode or kind
// changed get a fresh checker, every changed check loses its cached client,
// and removed checks are unregistered. On error nothing changes. It returns the names touched.
func (rt *runtime) apply(ctx context.Context, doc *config.Document) ([]string, error) {
	resolver, err := secret.DefaultRegistry.Build(doc.Secrets)
	if err != nil {
		return nil, err
	}
	set, err := doc.Options(ctx, resolver)
	if err != nil {
		return nil, err
	}
	if err := validateSet(doc, set, rt.services); err != nil {
		return nil, err
	}

	checkers := make(map[string]health.Checker, len(doc.Checks))
	for _, name := range doc.CheckNames() {
		cc := doc.Checks[name]
		if old, ok := rt.doc.Checks[name]; ok && old.Kind == cc.Kind && !modeChanged(rt.store, name, set[name]) {
			continue
		}
		chk, err := adapters.Build(cc.Kind, name, rt.store, rt.checkOptions(name, doc.Server)...)
		if err != nil {
			return nil, fmt.Errorf("config: check %q: %w", name, err)
		}
		meta := observe.CheckMeta{Name: name, Kind: cc.Kind, Mode: set[name].Mode.Kind().String()}
		checkers[name] = rt.mw.Wrap(chk, meta)
	}

	changed, err := rt.store.Replace(set)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]bool, len(changed)+len(checkers))
	for _, name := range changed {
		touched[name] = true
		if _, ok := doc.Checks[name]; !ok {
			rt.agg.Unregister(name)
		}
	}
	for name, chk := range checkers {
		touched[name] = true
		rt.agg.Register(name, chk)
	}
	// A kind change alone leaves the options equal but the client type stale.
	for name := range touched {
		if err := rt.clients.Evict(name); err != nil {
			rt.logger.Warn(ctx, "closing client failed", observe.F("check", name), observe.F("error", err))
		}
	}

	if rt.resolver != nil {
		_ = rt.resolver.Close()
	}
	rt.resolver = resolver
	rt.doc = doc

	return sortedKeys(touched), nil
}

// validateSet validates every check of doc against its adapter. All invalid
// checks are reported together.
func validateSet(doc *config.Document, set map[string]*probe.Options, services *probe.Services) error {
	var errs []error
	for _, name := range doc.CheckNames() {
		chk, err := adapters.Build(doc.Checks[name].Kind, name, probe.StaticOptions(set), probe.WithServices(services))
		if err == nil {
			err = chk.Validate()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("check %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// modeChanged reports whether name's mode differs from the bound one. Other
// option changes need no new checker since options are read on every run.
func modeChanged(store *config.Store, name string, next *probe.Options) bool {
	prev, ok := store.Lookup(name)
	if !ok {
		return true
	}
	return prev.Mode != next.Mode
}

// checkOptions builds the options of one check. Each check gets its own
// circuit breaker.
func (rt *runtime) checkOptions(name string, server config.ServerConfig) []probe.Option {
	opts := []probe.Option{
		probe.WithClients(rt.clients),
		probe.WithServices(rt.services),
		probe.WithLogger(rt.logger),
	}

	if server.Retry.MaxAttempts > 0 {
		opts = append(opts, probe.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  server.Retry.MaxAttempts,
			InitialDelay: time.Duration(server.Retry.InitialDelayMS) * time.Millisecond,
			Jitter:       true,
			RetryIf: func(err error) bool {
				return !errors.Is(err, probe.ErrModeNotSupported) && !errors.Is(err, probe.ErrPanic)
			},
		})))
	}
	if server.Circuit.MaxFailures > 0 {
		logger := rt.logger
		opts = append(opts, probe.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  server.Circuit.MaxFailures,
			ResetTimeout: time.Duration(server.Circuit.ResetTimeoutMS) * time.Millisecond,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "circuit state changed",
					observe.F("check", name), observe.F("from", from.String()), observe.F("to", to.String()))
			},
		})))
	}
	return opts
}

func (rt *runtime) Close(ctx context.Context) error {
	return errors.Join(rt.clients.Close(), rt.resolver.Close(), rt.observer.Shutdown(ctx))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
