package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes.
//
// The parent directory is watched rather than the file, so editors and
// config-map mounts that replace the file by rename are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	closeOnce sync.Once
}

// NewWatcher starts watching path. Changes made after NewWatcher returns
// are delivered by Run.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{path: path, debounce: debounce, fsw: fsw}, nil
}

// Run calls fn with the result of Load after each settled change, until
// ctx ends or the watcher is closed. fn runs on Run's goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(*Document, error)) error {
	defer w.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("config: watch: %w", err))

		case <-timer.C:
			fn(Load(w.path))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsw.Close() })
	return err
}
