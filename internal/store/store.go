package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is the key-value persistence used for durable client state.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates a backend.
type Config struct {
	Driver string
	Path   string // sqlite database file
	DSN    string // postgres connection URL
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Driver {
	case "", DriverSQLite:
		s, err = NewSQLiteStore(cfg.Path)
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the postgres driver")
		}
		s, err = NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s (use: sqlite, postgres)", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}
