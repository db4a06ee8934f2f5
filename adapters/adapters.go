// Package adapters is the registry of built-in check kinds. Each kind maps
// to a constructor that wires the adapter's factory and probe into a
// probe.Check.
package adapters

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jonwraymond/healthops/adapters/azureblob"
	"github.com/jonwraymond/healthops/adapters/badger"
	"github.com/jonwraymond/healthops/adapters/gcs"
	"github.com/jonwraymond/healthops/adapters/influx"
	"github.com/jonwraymond/healthops/adapters/keycloak"
	"github.com/jonwraymond/healthops/adapters/sqlite"
	"github.com/jonwraymond/healthops/adapters/weaviate"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/probe"
)

// ErrUnknownKind is returned for a kind no adapter provides.
var ErrUnknownKind = errors.New("adapters: unknown kind")

// Checker is a check built by an adapter.
type Checker interface {
	health.Checker
	Kind() string
	Validate() error
}

// Constructor builds a check of one kind.
type Constructor func(name string, source probe.OptionsSource, opts ...probe.Option) Checker

// Description documents a kind.
type Description struct {
	Kind  string
	Modes []probe.ModeKind
	// Params lists the adapter parameters the kind reads.
	Params []string
}

type entry struct {
	desc Description
	ctor Constructor
}

var builtins = map[string]entry{
	azureblob.Kind: {
		desc: Description{Kind: azureblob.Kind, Modes: azureblob.Modes, Params: azureblob.Params},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return azureblob.New(name, source, opts...)
		},
	},
	badger.Kind: {
		desc: Description{Kind: badger.Kind, Modes: badger.Modes, Params: badger.Params},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return badger.New(name, source, opts...)
		},
	},
	gcs.Kind: {
		desc: Description{Kind: gcs.Kind, Modes: gcs.Modes, Params: gcs.Params},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return gcs.New(name, source, opts...)
		},
	},
	influx.Kind: {
		desc: Description{Kind: influx.Kind, Modes: influx.Modes},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return influx.New(name, source, opts...)
		},
	},
	keycloak.Kind: {
		desc: Description{Kind: keycloak.Kind, Modes: keycloak.Modes, Params: keycloak.Params},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return keycloak.New(name, source, opts...)
		},
	},
	sqlite.Kind: {
		desc: Description{Kind: sqlite.Kind, Modes: sqlite.Modes, Params: sqlite.Params},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return sqlite.New(name, source, opts...)
		},
	},
	weaviate.Kind: {
		desc: Description{Kind: weaviate.Kind, Modes: weaviate.Modes},
		ctor: func(name string, source probe.OptionsSource, opts ...probe.Option) Checker {
			return weaviate.New(name, source, opts...)
		},
	},
}

// Kinds returns the built-in kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(builtins))
	for k := range builtins {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Describe returns the description of every kind, sorted by kind.
func Describe() []Description {
	out := make([]Description, 0, len(builtins))
	for _, k := range Kinds() {
		out = append(out, builtins[k].desc)
	}
	return out
}

// Build creates a check of the given kind.
func Build(kind, name string, source probe.OptionsSource, opts ...probe.Option) (Checker, error) {
	e, ok := builtins[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return e.ctor(name, source, opts...), nil
}
