package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with a ulower(text) function. SQLite's LOWER and
// LIKE only fold ASCII, so stop search lowercases both sides with ulower.
const driverName = "sqlite3_livelink"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// DB wraps a SQLite database connection with timetable, live status and alert operations.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Open creates or opens a SQLite database at the given path and applies migrations.
func Open(path string, logger *slog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("database opened", "path", path)
	return db, nil
}

// querier is the subset of *sql.DB and *sql.Tx used by read queries.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Reader runs read queries against either the database or a snapshot transaction.
type Reader struct {
	q querier
}

// Reader returns a Reader over the live database, one statement per query.
func (db *DB) Reader() *Reader {
	return &Reader{q: db.DB}
}

// Snapshot runs fn inside a read-only transaction so every query it issues
// sees the same committed state.
func (db *DB) Snapshot(ctx context.Context, fn func(*Reader) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Reader{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
