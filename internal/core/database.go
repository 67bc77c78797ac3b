// Package database is the persistence adapter for room-service.
//
// It hands out pooled connections and owns transaction boundaries. Domain
// repositories talk to the store only through the interfaces declared here,
// so the same SQL runs against PostgreSQL (pgxpool) in production and against
// an embedded SQLite file for local development and tests.
//
// SQL is written with PostgreSQL positional placeholders ($1, $2, ...); the
// SQLite driver binds them by ordinal as well.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/duynhne/room-service/config"
)

// Normalised driver errors. Adapters wrap the driver error so both the
// sentinel and the original cause are reachable with errors.Is / errors.As.
var (
	// ErrNoRows is returned by Row.Scan when the query matched nothing.
	ErrNoRows = errors.New("database: no rows in result set")

	// ErrUniqueViolation is returned when a write violates a unique or primary key constraint.
	ErrUniqueViolation = errors.New("database: unique constraint violation")

	// ErrForeignKeyViolation is returned when a write references a missing parent row.
	ErrForeignKeyViolation = errors.New("database: foreign key violation")
)

// Row is the result of a single-row query. Errors are deferred until Scan.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward-only cursor. Callers must Close it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier executes statements. It is implemented by the pool itself, by an
// acquired connection and by an open transaction.
type Querier interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Conn is a connection checked out of the pool. Release returns it and must
// be called on every path; it is safe to call more than once.
type Conn interface {
	Querier
	Ping(ctx context.Context) error
	Release()
}

// TxFunc runs inside a transaction. Returning an error rolls the
// transaction back; returning nil commits it.
type TxFunc func(ctx context.Context, q Querier) error

// DB is a pooled relational store.
type DB interface {
	Querier

	// Acquire checks a connection out of the pool for the caller's exclusive use.
	Acquire(ctx context.Context) (Conn, error)

	// WithinTransaction runs fn in one store-level transaction on one
	// connection. The connection is released on every exit path.
	WithinTransaction(ctx context.Context, fn TxFunc) error

	// Migrate applies the embedded schema for this dialect.
	Migrate(ctx context.Context) error

	// Driver names the dialect ("postgres" or "sqlite").
	Driver() string

	Close()
}

// Connect opens the store configured in cfg and verifies it is reachable.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return ConnectPostgres(ctx, cfg)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Ping acquires a connection and pings the store through it.
func Ping(ctx context.Context, db DB) error {
	conn, err := db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return conn.Ping(ctx)
}

// logRollbackError records a failed rollback. The error that caused the
// rollback is what gets returned to the caller.
func logRollbackError(ctx context.Context, driver string, err error) {
	if err == nil {
		return
	}
	log.Ctx(ctx).Warn().Err(err).Str("driver", driver).Msg("Transaction rollback failed")
}
