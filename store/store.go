// Package store persists capture records between and during runs.
//
// A Store is also a capture.Checkpointer: the export loop hands it the
// whole record after every step, and each Persist replaces what the
// previous one wrote.
package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/stagecraft/capture"
)

// Store persists and reloads a whole capture record.
type Store interface {
	Persist(ctx context.Context, rec capture.Record) error
	Load(ctx context.Context) (capture.Record, error)
	Close() error
}

var (
	_ Store                = (*FileStore)(nil)
	_ Store                = (*SQLiteStore)(nil)
	_ capture.Checkpointer = Store(nil)
)

// Options configures Open.
type Options struct {
	// RunID selects the run of an SQLite store. Empty on a fresh store
	// means a new run id; Load then falls back to the latest run.
	RunID  string
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Format of a store path, derived from its extension.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// FormatOf maps a path extension to a Format. Unknown extensions are JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// Open returns the backend matching path's extension.
func Open(path string, opts Options) (Store, error) {
	opts.defaults()
	if FormatOf(path) == FormatSQLite {
		return OpenSQLite(path, opts)
	}
	return NewFileStore(path, opts.Logger), nil
}
