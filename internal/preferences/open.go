package preferences

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scolli03/rwmarket/internal/database"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects a preferences backend
type Options struct {
	Driver string
	// Path is the SQLite file
	Path string
	// URL is the Postgres connection string
	URL  string
	Pool database.PoolConfig
}

// Open returns the Store selected by opts. The Postgres backend connects the
// shared database pool and creates the schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		path := opts.Path
		if path == "" {
			path = "./data/rwmarket.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return NewSQLiteStore(path)
	case DriverPostgres:
		if opts.URL == "" {
			return nil, fmt.Errorf("database.url is required for the postgres driver")
		}
		if err := database.Connect(ctx, opts.URL, opts.Pool); err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return NewPostgresStore(database.Pool())
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
}
