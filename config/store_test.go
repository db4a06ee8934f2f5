package config

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/probe"
)

func registryOpts(key string) *probe.Options {
	return &probe.Options{Mode: probe.Registry{Key: key}, Timeout: probe.DefaultTimeout}
}

func TestStore_Bind(t *testing.T) {
	s := NewStore()

	if _, ok := s.Lookup("a"); ok {
		t.Error("Lookup on empty store found a value")
	}
	if err := s.Bind("a", registryOpts("")); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if opts, ok := s.Lookup("a"); !ok || opts.Mode != (probe.Registry{}) {
		t.Errorf("Lookup(a) = %+v, %v", opts, ok)
	}

	err := s.Bind("b", &probe.Options{Mode: probe.SasToken{ServiceURI: "https://x"}})
	if !errors.Is(err, probe.ErrInvalidOptions) {
		t.Errorf("Bind(invalid) error = %v, want ErrInvalidOptions", err)
	}
	if _, ok := s.Lookup("b"); ok {
		t.Error("invalid options were bound")
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore()
	changed, err := s.Replace(map[string]*probe.Options{
		"a": registryOpts("1"),
		"b": registryOpts("1"),
		"c": registryOpts("1"),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(changed, want) {
		t.Errorf("first Replace() changed = %v, want %v", changed, want)
	}

	changed, err = s.Replace(map[string]*probe.Options{
		"a": registryOpts("1"),
		"b": registryOpts("2"),
		"d": registryOpts("1"),
	})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if want := []string{"b", "c", "d"}; !reflect.DeepEqual(changed, want) {
		t.Errorf("Replace() changed = %v, want %v", changed, want)
	}
	if want := []string{"a", "b", "d"}; !reflect.DeepEqual(s.Names(), want) {
		t.Errorf("Names() = %v, want %v", s.Names(), want)
	}
}

func TestStore_ReplaceInvalidKeepsContent(t *testing.T) {
	s := NewStore()
	if _, err := s.Replace(map[string]*probe.Options{"a": registryOpts("")}); err != nil {
		t.Fatal(err)
	}

	_, err := s.Replace(map[string]*probe.Options{
		"a":   registryOpts("x"),
		"bad": {Mode: probe.AccountKey{ServiceURI: "relative/path", AccountKey: "k"}},
	})
	if !errors.Is(err, probe.ErrInvalidOptions) {
		t.Fatalf("Replace() error = %v, want ErrInvalidOptions", err)
	}
	if opts, _ := s.Lookup("a"); opts.Mode != (probe.Registry{}) {
		t.Errorf("store changed after failed Replace: %+v", opts)
	}
	if _, ok := s.Lookup("bad"); ok {
		t.Error("failed Replace bound an entry")
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Replace(map[string]*probe.Options{"a": registryOpts("")})
		}()
		go func() {
			defer wg.Done()
			s.Lookup("a")
			s.Names()
		}()
	}
	wg.Wait()
}

type dsnClient struct{ dsn string }

func TestStore_ReplaceDuringConstruction(t *testing.T) {
	store := NewStore()
	clients := cache.NewClients()
	defer clients.Close()

	old := &probe.Options{Mode: probe.ConnectionString{ConnectionString: "old"}, Timeout: time.Second}
	if err := store.Bind("db", old); err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	factory := func(ctx context.Context, opts *probe.Options) (*dsnClient, error) {
		dsn := opts.Mode.(probe.ConnectionString).ConnectionString
		if dsn == "old" {
			close(started)
			<-release
		}
		return &dsnClient{dsn: dsn}, nil
	}
	var seen []string
	var mu sync.Mutex
	check := probe.New("db", store, factory, func(ctx context.Context, c *dsnClient, opts *probe.Options) (probe.Verdict, error) {
		mu.Lock()
		seen = append(seen, c.dsn)
		mu.Unlock()
		return probe.Pass(), nil
	}, probe.WithClients(clients))

	first := make(chan health.Result, 1)
	go func() { first <- check.Check(context.Background()) }()
	<-started

	next := &probe.Options{Mode: probe.ConnectionString{ConnectionString: "new"}, Timeout: time.Second}
	changed, err := store.Replace(map[string]*probe.Options{"db": next})
	if err != nil || len(changed) != 1 {
		t.Fatalf("Replace() = %v, %v", changed, err)
	}
	for _, name := range changed {
		_ = clients.Evict(name)
	}
	close(release)

	if r := <-first; !errors.Is(r.Error, cache.ErrEvicted) {
		t.Errorf("run straddling the reload = %v (%v), want ErrEvicted", r.Status, r.Error)
	}
	if r := check.Check(context.Background()); r.Status != health.StatusHealthy {
		t.Fatalf("Check() after reload = %v (%v)", r.Status, r.Error)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "new" {
		t.Errorf("probed clients = %v, want [new]", seen)
	}
}
