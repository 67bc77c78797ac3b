package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/duynhne/room-service/config"
)

// sqlExecer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteDB implements DB over a single SQLite file.
//
// SQLite allows one writer at a time, so the pool is capped at a single
// connection and every operation is serialised. Callers must not hold an
// acquired connection or open transaction while issuing another query on the
// pool.
type SQLiteDB struct {
	sqliteQuerier
	db  *sql.DB
	dsn string
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &SQLiteDB{sqliteQuerier: sqliteQuerier{q: db}, db: db, dsn: dsn}, nil
}

func (db *SQLiteDB) Driver() string {
	return config.DriverSQLite
}

func (db *SQLiteDB) Acquire(ctx context.Context) (Conn, error) {
	conn, err := db.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqliteConn{sqliteQuerier: sqliteQuerier{q: conn}, conn: conn}, nil
}

func (db *SQLiteDB) WithinTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			logRollbackError(ctx, config.DriverSQLite, tx.Rollback())
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); !errors.Is(rbErr, sql.ErrTxDone) {
				logRollbackError(ctx, config.DriverSQLite, rbErr)
			}
		}
	}()

	if err = fn(ctx, sqliteQuerier{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapSQLiteError(err))
	}
	return nil
}

// Migrate runs the migrations on a short-lived handle of its own, leaving the
// single pooled connection free.
func (db *SQLiteDB) Migrate(ctx context.Context) error {
	sqlDB, err := sql.Open("sqlite", db.dsn)
	if err != nil {
		return fmt.Errorf("open sqlite db for migrations: %w", err)
	}
	defer sqlDB.Close()

	return applyMigrations(ctx, sqlDB, goose.DialectSQLite3, "migrations/sqlite")
}

func (db *SQLiteDB) Close() {
	_ = db.db.Close()
}

type sqliteConn struct {
	sqliteQuerier
	conn *sql.Conn
	once sync.Once
}

func (c *sqliteConn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

func (c *sqliteConn) Release() {
	c.once.Do(func() { _ = c.conn.Close() })
}

// sqliteQuerier adapts database/sql to Querier and normalises errors. The
// driver binds $N placeholders by ordinal, so PostgreSQL-style SQL runs as is.
type sqliteQuerier struct {
	q sqlExecer
}

func (s sqliteQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	return res.RowsAffected()
}

func (s sqliteQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return sqliteRow{row: s.q.QueryRowContext(ctx, query, args...)}
}

func (s sqliteQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return sqliteRows{rows: rows}, nil
}

type sqliteRow struct {
	row *sql.Row
}

func (r sqliteRow) Scan(dest ...any) error {
	return mapSQLiteError(r.row.Scan(dest...))
}

type sqliteRows struct {
	rows *sql.Rows
}

func (r sqliteRows) Next() bool             { return r.rows.Next() }
func (r sqliteRows) Scan(dest ...any) error { return mapSQLiteError(r.rows.Scan(dest...)) }
func (r sqliteRows) Err() error             { return mapSQLiteError(r.rows.Err()) }
func (r sqliteRows) Close()                 { _ = r.rows.Close() }

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNoRows, err)
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}
	// Primary result code only; fall back to the message.
	if sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
	}
	return err
}
