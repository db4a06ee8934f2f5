package probe

import (
	"reflect"
	"sync"
	"time"
)

const (
	// InfiniteTimeout disables the probe timer. Configured as -1.
	InfiniteTimeout = -time.Millisecond

	// DefaultTimeout applies when configuration names no timeout.
	DefaultTimeout = 10 * time.Second
)

// Options is the configuration of one check. It is not modified while a
// probe runs; reloads replace the whole value.
type Options struct {
	// Mode says how the client is built. Required.
	Mode Mode

	// Timeout bounds each probe. Zero times out at once; InfiniteTimeout
	// waits until the probe or the caller's context finishes.
	Timeout time.Duration

	// Params holds adapter parameters such as a container or bucket name.
	Params map[string]string
}

// Param returns the named adapter parameter, or "".
func (o *Options) Param(name string) string {
	if o == nil {
		return ""
	}
	return o.Params[name]
}

// OptionsSource finds the options bound to a check name.
//
// Contract:
// - Concurrency: Lookup may be called concurrently.
// - Ownership: callers must not modify the returned Options.
type OptionsSource interface {
	Lookup(name string) (*Options, bool)
}

// StaticOptions is a fixed OptionsSource.
type StaticOptions map[string]*Options

// Lookup implements OptionsSource.
func (s StaticOptions) Lookup(name string) (*Options, bool) {
	opts, ok := s[name]
	return opts, ok
}

// Services is a registry of externally owned clients, looked up by client
// type and an optional key. Checks in Registry mode take their client from
// here; these clients never enter the client cache.
type Services struct {
	mu      sync.RWMutex
	entries map[serviceKey]any
}

type serviceKey struct {
	typ reflect.Type
	key string
}

// NewServices creates an empty registry.
func NewServices() *Services {
	return &Services{entries: make(map[serviceKey]any)}
}

// Provide registers the default client of type C.
func Provide[C any](s *Services, client C) {
	ProvideKeyed(s, "", client)
}

// ProvideKeyed registers a client of type C under key.
func ProvideKeyed[C any](s *Services, key string, client C) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[serviceKey{typ: reflect.TypeFor[C](), key: key}] = client
}

// Resolve returns the client of type C registered under key. A nil
// registry holds nothing.
func Resolve[C any](s *Services, key string) (C, bool) {
	var zero C
	if s == nil {
		return zero, false
	}

	s.mu.RLock()
	v, ok := s.entries[serviceKey{typ: reflect.TypeFor[C](), key: key}]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	client, ok := v.(C)
	return client, ok
}

