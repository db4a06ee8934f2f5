// Package sqlite probes a SQLite database through the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "sqlite"

// DefaultQuery runs when the check sets no query parameter.
const DefaultQuery = "SELECT sqlite_version()"

// Modes lists the creation modes Factory accepts.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindConnectionString}

// Params lists the optional parameters. query replaces DefaultQuery.
var Params = []string{"query"}

// New creates a check. The optional query parameter replaces DefaultQuery;
// it must return one row and is reported as the result detail.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*sql.DB] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...)}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory opens the database named by a connection string DSN.
func Factory(ctx context.Context, opts *probe.Options) (*sql.DB, error) {
	switch m := opts.Mode.(type) {
	case probe.ConnectionString:
		db, err := sql.Open("sqlite", m.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("sqlite: open: %w", err)
		}
		return db, nil
	default:
		return nil, probe.Unsupported(opts.Mode)
	}
}

// Probe runs the check query.
func Probe(ctx context.Context, db *sql.DB, opts *probe.Options) (probe.Verdict, error) {
	query := opts.Param("query")
	if query == "" {
		query = DefaultQuery
	}

	var result sql.NullString
	if err := db.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return probe.Verdict{}, fmt.Errorf("sqlite: query: %w", err)
	}

	return probe.Pass().WithDetails(map[string]any{"result": result.String}), nil
}
