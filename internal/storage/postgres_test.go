package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"msgboard/internal/config"
	"msgboard/internal/model"
)

// setupPostgres connects to TEST_DATABASE_URL and empties the messages table.
func setupPostgres(t *testing.T) *Postgres {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgres(ctx, config.Config{
		DatabaseURL:       url,
		DBMaxConns:        4,
		DBMinConns:        1,
		DBConnMaxLifetime: time.Minute,
		DBConnMaxIdleTime: time.Minute,
		DBConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Skipf("Skipping: could not connect to test database: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		t.Skipf("Skipping: could not ping test database: %v", err)
	}
	t.Cleanup(store.Close)

	require.NoError(t, store.Migrate(ctx))
	_, err = store.pool.Exec(ctx, "TRUNCATE messages")
	require.NoError(t, err)
	return store
}

func TestPostgres_InsertAndQuery(t *testing.T) {
	req := require.New(t)
	store := setupPostgres(t)
	ctx := context.Background()

	conn, err := store.Acquire(ctx)
	req.NoError(err)
	defer conn.Release()

	ts, err := conn.Insert(ctx, model.NewMessage{Username: "bob", Message: "hello"})
	req.NoError(err)

	messages, err := conn.Query(ctx, model.TimeRange{})
	req.NoError(err)
	req.Equal([]model.Message{{Username: "bob", Message: "hello", Timestamp: ts}}, messages)

	messages, err = conn.Query(ctx, model.TimeRange{Before: ptr(ts)})
	req.NoError(err)
	req.Empty(messages)
}

func TestPostgres_QueryTimeRange(t *testing.T) {
	req := require.New(t)
	store := setupPostgres(t)
	ctx := context.Background()

	for i, ts := range []int64{10, 20, 30} {
		_, err := store.pool.Exec(ctx,
			`INSERT INTO messages (username, message, "timestamp") VALUES ($1, $2, $3)`,
			"user", string(rune('a'+i)), ts)
		req.NoError(err)
	}

	conn, err := store.Acquire(ctx)
	req.NoError(err)
	defer conn.Release()

	messages, err := conn.Query(ctx, model.TimeRange{Before: ptr(30), After: ptr(10)})
	req.NoError(err)
	req.Equal([]model.Message{{Username: "user", Message: "b", Timestamp: 20}}, messages)
}
