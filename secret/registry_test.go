package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("stub", func(cfg map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := NewRegistry()
	factory := func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }
	_ = reg.Register("stub", factory)

	tests := []struct {
		name    string
		regName string
		factory ProviderFactory
		wantErr error
	}{
		{"duplicate", "stub", factory, ErrProviderExists},
		{"blank name", "  ", factory, ErrInvalidRegistration},
		{"nil factory", "other", nil, ErrInvalidRegistration},
	}

	for _, tt := range tests {
		if err := reg.Register(tt.regName, tt.factory); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Register() error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	if _, err := NewRegistry().Create("missing", nil); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("Create() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	got := DefaultRegistry.List()
	if len(got) != 2 || got[0] != "env" || got[1] != "file" {
		t.Errorf("List() = %v, want [env file]", got)
	}

	if _, err := DefaultRegistry.Create("file", map[string]any{"dir": 42}); err == nil {
		t.Error("Create(file) with a non-string dir should fail")
	}
}

func TestRegistry_Build(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("t0k3n\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HO_TEST_USER", "admin")

	r, err := DefaultRegistry.Build(map[string]map[string]any{
		"file": {"dir": dir},
		"env":  {"prefix": "HO_TEST_"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	if got, err := r.ResolveValue(ctx, "secretref:file:token"); err != nil || got != "t0k3n" {
		t.Errorf("file ref = %q, %v", got, err)
	}
	if got, err := r.ResolveValue(ctx, "secretref:env:USER"); err != nil || got != "admin" {
		t.Errorf("env ref = %q, %v", got, err)
	}
}

func TestRegistry_BuildAlwaysHasEnv(t *testing.T) {
	r, err := DefaultRegistry.Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := r.Providers(); len(got) != 1 || got[0] != "env" {
		t.Errorf("Providers() = %v, want [env]", got)
	}

	if _, err := DefaultRegistry.Build(map[string]map[string]any{"vault": nil}); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("Build(vault) error = %v, want ErrProviderNotRegistered", err)
	}
}
