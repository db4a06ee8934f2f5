package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CreateFunc builds the client for one name.
type CreateFunc func(ctx context.Context) (any, error)

// Clients holds one client per check name for the life of the process.
//
// Contract:
//   - Concurrency: safe for concurrent use; lookups for different names
//     never wait on each other.
//   - Construction: concurrent first callers for a name share one CreateFunc
//     call and its result. Failures are not stored.
//   - Context: construction runs detached from the caller's cancellation;
//     each caller still stops waiting when its own ctx ends.
//   - Eviction: a construction that was in flight when its name was evicted
//     is closed and never stored; its callers get ErrEvicted.
type Clients struct {
	mu      sync.RWMutex
	clients map[string]any
	gens    map[string]uint64
	closed  bool

	group singleflight.Group
}

// NewClients creates an empty client cache.
func NewClients() *Clients {
	return &Clients{clients: make(map[string]any), gens: make(map[string]uint64)}
}

// Get returns the client cached under name.
func (c *Clients) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	client, ok := c.clients[name]
	return client, ok
}

// GetOrCreate returns the client cached under name, calling create on a miss.
func (c *Clients) GetOrCreate(ctx context.Context, name string, create CreateFunc) (any, error) {
	if err := ValidateKey(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if client, ok := c.Get(name); ok {
		return client, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(name, func() (any, error) {
		c.mu.RLock()
		client, ok := c.clients[name]
		gen := c.gens[name]
		c.mu.RUnlock()
		// A flight that finished between our miss and DoChan already stored it.
		if ok {
			return client, nil
		}

		client, err := create(detached)
		if err != nil {
			return nil, err
		}
		if err := c.store(name, gen, client); err != nil {
			_ = closeClient(client)
			return nil, err
		}
		return client, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// store caches client under name unless the cache was closed or name was
// evicted after the construction read gen.
func (c *Clients) store(name string, gen uint64, client any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.gens[name] != gen:
		return ErrEvicted
	}
	c.clients[name] = client
	return nil
}

// Evict drops and closes the client cached under name. Used when a reload
// changes how that client must be built. A construction already running for
// name is discarded when it finishes.
func (c *Clients) Evict(name string) error {
	c.mu.Lock()
	client, ok := c.clients[name]
	delete(c.clients, name)
	c.gens[name]++
	c.mu.Unlock()

	c.group.Forget(name)
	if !ok {
		return nil
	}
	return closeClient(client)
}

// Len returns the number of cached clients.
func (c *Clients) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Close closes every cached client that implements io.Closer and refuses
// further construction. Errors from individual clients are joined.
func (c *Clients) Close() error {
	c.mu.Lock()
	clients := c.clients
	c.clients = make(map[string]any)
	c.closed = true
	c.mu.Unlock()

	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := closeClient(clients[name]); err != nil {
			errs = append(errs, fmt.Errorf("cache: close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func closeClient(client any) error {
	if closer, ok := client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
