package secret

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from its configuration section.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %q", ErrProviderExists, name)
	}
	r.providers[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}

	return factory(cfg)
}

// List returns registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates one provider per entry of sections and returns a strict
// Resolver over them. The env provider is always present; a section named
// "env" only changes its prefix.
func (r *Registry) Build(sections map[string]map[string]any) (*Resolver, error) {
	names := make([]string, 0, len(sections)+1)
	for name := range sections {
		names = append(names, name)
	}
	if _, ok := sections["env"]; !ok {
		names = append(names, "env")
	}
	sort.Strings(names)

	resolver := NewResolver(true)
	for _, name := range names {
		p, err := r.Create(name, sections[name])
		if err != nil {
			_ = resolver.Close()
			return nil, err
		}
		resolver.Register(p)
	}
	return resolver, nil
}

// DefaultRegistry holds the built-in env and file providers.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	_ = r.Register("env", newEnvProvider)
	_ = r.Register("file", newFileProvider)
	return r
}()
