package config

import (
	"reflect"
	"sort"
	"sync"

	"github.com/jonwraymond/healthops/probe"
)

// Store holds the options bound to each check name. It implements
// probe.OptionsSource.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Ownership: stored Options are never modified; Replace swaps pointers.
type Store struct {
	mu   sync.RWMutex
	opts map[string]*probe.Options
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{opts: make(map[string]*probe.Options)}
}

// Lookup implements probe.OptionsSource.
func (s *Store) Lookup(name string) (*probe.Options, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts, ok := s.opts[name]
	return opts, ok
}

// Bind validates opts and binds them to name.
func (s *Store) Bind(name string, opts *probe.Options) error {
	if err := probe.Validate(name, opts); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts[name] = opts
	return nil
}

// Replace validates every entry of set and, if all pass, makes set the
// whole content of the store. It returns the names that were added,
// changed or removed, sorted. On error the store is unchanged.
func (s *Store) Replace(set map[string]*probe.Options) ([]string, error) {
	for _, name := range sortedKeys(set) {
		if err := probe.Validate(name, set[name]); err != nil {
			return nil, err
		}
	}

	next := make(map[string]*probe.Options, len(set))
	for name, opts := range set {
		next[name] = opts
	}

	s.mu.Lock()
	prev := s.opts
	s.opts = next
	s.mu.Unlock()

	var changed []string
	for name, opts := range next {
		if old, ok := prev[name]; !ok || !reflect.DeepEqual(old, opts) {
			changed = append(changed, name)
		}
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

// Names returns the bound check names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.opts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ probe.OptionsSource = (*Store)(nil)
