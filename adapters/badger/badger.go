// Package badger probes an embedded Badger key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "badger"

// InMemory is the connection string that opens an in-memory store.
const InMemory = ":memory:"

// Modes lists the creation modes Factory accepts.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindConnectionString}

// Params lists the optional parameters. key names a key that must exist.
var Params = []string{"key"}

// New creates a check. With the key parameter the probe reads that key and
// fails when it is missing; otherwise it opens a read transaction.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*badgerdb.DB] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...)}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory opens the store. The connection string is a directory, or
// InMemory.
func Factory(ctx context.Context, opts *probe.Options) (*badgerdb.DB, error) {
	switch m := opts.Mode.(type) {
	case probe.ConnectionString:
		var bopts badgerdb.Options
		if m.ConnectionString == InMemory {
			bopts = badgerdb.DefaultOptions("").WithInMemory(true)
		} else {
			bopts = badgerdb.DefaultOptions(m.ConnectionString)
		}
		db, err := badgerdb.Open(bopts.WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("badger: open: %w", err)
		}
		return db, nil
	default:
		return nil, probe.Unsupported(opts.Mode)
	}
}

// Probe opens a read transaction and reports the LSM and value log sizes.
func Probe(ctx context.Context, db *badgerdb.DB, opts *probe.Options) (probe.Verdict, error) {
	if db.IsClosed() {
		return probe.Fail("Database is closed."), nil
	}

	key := opts.Param("key")
	err := db.View(func(txn *badgerdb.Txn) error {
		if key == "" {
			it := txn.NewIterator(badgerdb.IteratorOptions{})
			it.Rewind()
			it.Close()
			return nil
		}
		_, err := txn.Get([]byte(key))
		return err
	})
	switch {
	case errors.Is(err, badgerdb.ErrKeyNotFound):
		return probe.Fail(fmt.Sprintf("Key `%s` does not exist.", key)), nil
	case errors.Is(err, badgerdb.ErrDBClosed):
		return probe.Fail("Database is closed."), nil
	case err != nil:
		return probe.Verdict{}, fmt.Errorf("badger: read: %w", err)
	}

	lsm, vlog := db.Size()
	return probe.Pass().WithDetails(map[string]any{"lsm_bytes": lsm, "vlog_bytes": vlog}), nil
}
