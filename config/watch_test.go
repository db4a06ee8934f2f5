package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "healthops.yaml")
	if err := os.WriteFile(path, []byte("server: {addr: ':1'}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type loaded struct {
		doc *Document
		err error
	}
	got := make(chan loaded, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(doc *Document, err error) { got <- loaded{doc, err} })
	}()

	// A sibling file must not trigger a reload.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("server: {addr: ':2'}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case l := <-got:
		if l.err != nil {
			t.Fatalf("reload error = %v", l.err)
		}
		if l.doc.Server.Addr != ":2" {
			t.Errorf("reloaded Addr = %q, want :2", l.doc.Server.Addr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
	}

	if err := os.WriteFile(path, []byte("server: {adr: ':3'}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case l := <-got:
		if !errors.Is(l.err, ErrInvalidDocument) {
			t.Errorf("reload error = %v, want ErrInvalidDocument", l.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "healthops.yaml"), 0)
	if err == nil {
		t.Error("NewWatcher() error = nil for missing directory")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "healthops.yaml"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
