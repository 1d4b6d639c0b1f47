// Package store persists finished game rounds.
//
// Three backends are available: append-only JSON lines in a local file,
// PostgreSQL through pgx, and an embedded SQLite database. All of them
// implement [Store] and therefore [game.RoundRecorder].
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/guessbot/internal/game"
)

// Store records rounds and reads them back per session.
type Store interface {
	game.RoundRecorder

	// Session returns every round recorded for sessionID in the order they
	// were recorded.
	Session(ctx context.Context, sessionID string) ([]game.RoundRecord, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config selects and locates a backend.
type Config struct {
	Backend string
	Path    string // file and sqlite
	DSN     string // postgres
}

// Open returns the configured backend, migrated and ready for use. The
// "none" backend (and an empty name) returns (nil, nil).
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendFile:
		if cfg.Path == "" {
			return nil, errors.New("store: file backend needs a path")
		}
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, errors.New("store: sqlite backend needs a path")
		}
		return OpenSQLite(ctx, cfg.Path)
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("store: postgres backend needs a dsn")
		}
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: connect postgres: %w", err)
		}
		s := NewPostgresStore(pool, pool.Close)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
