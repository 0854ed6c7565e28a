package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"msgboard/internal/config"
	"msgboard/internal/model"
)

// SQLStore is a Store over database/sql, used for MySQL and SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	schema  []string
}

// NewMySQL opens a MySQL pool. cfg.DatabaseURL is a go-sql-driver DSN such as
// user:pass@tcp(localhost:3306)/board.
func NewMySQL(cfg config.Config) (*SQLStore, error) {
	dsn, err := mysql.ParseDSN(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	dsn.Timeout = cfg.DBConnectTimeout

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql database: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(int(cfg.DBMaxConns))
	db.SetMaxIdleConns(int(cfg.DBMinConns))
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	return &SQLStore{db: db, dialect: mysqlDialect, schema: mysqlSchema}, nil
}

// NewSQLite opens the SQLite database at path. A file-backed database runs in
// WAL mode with up to maxConns connections, so a request holding one does not
// stall the others. An in-memory database is pinned to one connection.
func NewSQLite(path string, maxConns int) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite dsn must be provided")
	}

	dsn := path
	if isSQLiteMemory(path) || maxConns < 1 {
		maxConns = 1
	}
	if !isSQLiteMemory(path) {
		dsn = withSQLiteParams(path, "_journal_mode=WAL", "_busy_timeout=5000", "_txlock=immediate")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)

	return &SQLStore{db: db, dialect: sqliteDialect, schema: sqliteSchema}, nil
}

// isSQLiteMemory reports whether path names a database that lives only as
// long as its connection.
func isSQLiteMemory(path string) bool {
	return path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

func withSQLiteParams(path string, params ...string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func (s *SQLStore) Acquire(ctx context.Context) (Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return &sqlConn{conn: c, dialect: s.dialect}, nil
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() {
	s.db.Close()
}

type sqlConn struct {
	conn    *sql.Conn
	dialect dialect
}

// Insert runs the insert and the read-back of the defaulted timestamp in one
// transaction, so a failed read-back leaves no row behind.
func (c *sqlConn) Insert(ctx context.Context, msg model.NewMessage) (int64, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, c.dialect.insertQuery(), msg.Username, msg.Message)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	var ts int64
	if err := tx.QueryRowContext(ctx, c.dialect.timestampByIDQuery(), id).Scan(&ts); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return ts, nil
}

func (c *sqlConn) Query(ctx context.Context, tr model.TimeRange) ([]model.Message, error) {
	query, args := c.dialect.selectQuery(tr)

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.Username, &msg.Message, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return messages, nil
}

func (c *sqlConn) Release() {
	c.conn.Close()
}
