package storage

import (
	"context"
	"errors"
	"fmt"

	"msgboard/internal/config"
	"msgboard/internal/model"
)

var (
	// ErrConnect is returned when no connection could be acquired.
	ErrConnect = errors.New("storage connect failure")
	// ErrRead is returned when a message query fails.
	ErrRead = errors.New("storage read failure")
	// ErrWrite is returned when a message insert fails.
	ErrWrite = errors.New("storage write failure")
)

// Store is a pooled handle to the messages table.
type Store interface {
	// Acquire checks a connection out of the pool. The caller must Release it.
	Acquire(ctx context.Context) (Conn, error)
	// Migrate creates the messages table if it does not exist.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Conn is a single checked-out connection, scoped to one request.
type Conn interface {
	// Insert stores msg and returns the timestamp assigned by the database.
	Insert(ctx context.Context, msg model.NewMessage) (int64, error)
	// Query returns the messages inside tr in insertion order.
	Query(ctx context.Context, tr model.TimeRange) ([]model.Message, error)
	Release()
}

// Open connects to the backend named by cfg.DBDriver and verifies it with a ping.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err = NewPostgres(ctx, cfg)
	case config.DriverMySQL:
		store, err = NewMySQL(cfg)
	case config.DriverSQLite:
		store, err = NewSQLite(cfg.DatabaseURL, int(cfg.DBMaxConns))
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if cfg.DBConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DBConnectTimeout)
		defer cancel()
	}
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return store, nil
}
