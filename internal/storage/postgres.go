package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"msgboard/internal/config"
	"msgboard/internal/model"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres builds the pool from cfg.DatabaseURL and the pool settings.
func NewPostgres(ctx context.Context, cfg config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = cfg.DBConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.DBConnMaxIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return &pgConn{conn: c}, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	p.pool.Close()
}

type pgConn struct {
	conn *pgxpool.Conn
}

func (c *pgConn) Insert(ctx context.Context, msg model.NewMessage) (int64, error) {
	query := postgresDialect.insertQuery() + " RETURNING " + postgresDialect.ts

	var ts int64
	if err := c.conn.QueryRow(ctx, query, msg.Username, msg.Message).Scan(&ts); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return ts, nil
}

func (c *pgConn) Query(ctx context.Context, tr model.TimeRange) ([]model.Message, error) {
	query, args := postgresDialect.selectQuery(tr)

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Message])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return messages, nil
}

func (c *pgConn) Release() {
	c.conn.Release()
}
