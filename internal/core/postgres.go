package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/duynhne/room-service/config"
)

// PostgreSQL SQLSTATE codes mapped to the normalised errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgxQuerier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDB implements DB over a pgx connection pool.
type PostgresDB struct {
	pgQuerier
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool from cfg and pings it.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns >= 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresDB {
	return &PostgresDB{pgQuerier: pgQuerier{q: pool}, pool: pool}
}

// Pool exposes the underlying pool for callers that need pgx directly.
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *PostgresDB) Driver() string {
	return config.DriverPostgres
}

func (db *PostgresDB) Acquire(ctx context.Context) (Conn, error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgConn{pgQuerier: pgQuerier{q: conn}, conn: conn}, nil
}

// WithinTransaction runs fn inside pgx.BeginFunc, which commits on nil and
// rolls back on error or panic.
func (db *PostgresDB) WithinTransaction(ctx context.Context, fn TxFunc) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		return fn(ctx, pgQuerier{q: tx})
	})
}

// Migrate runs the migrations through a database/sql view of the pool.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	return applyMigrations(ctx, sqlDB, goose.DialectPostgres, "migrations/postgres")
}

func (db *PostgresDB) Close() {
	db.pool.Close()
}

type pgConn struct {
	pgQuerier
	conn *pgxpool.Conn
	once sync.Once
}

func (c *pgConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *pgConn) Release() {
	c.once.Do(c.conn.Release)
}

// pgQuerier adapts a pgx querier to Querier and normalises its errors.
type pgQuerier struct {
	q pgxQuerier
}

func (p pgQuerier) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := p.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (p pgQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return pgRow{row: p.q.QueryRow(ctx, sql, args...)}
}

func (p pgQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := p.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	return pgRows{Rows: rows}, nil
}

type pgRow struct {
	row pgx.Row
}

func (r pgRow) Scan(dest ...any) error {
	return mapPgError(r.row.Scan(dest...))
}

type pgRows struct {
	pgx.Rows
}

func (r pgRows) Scan(dest ...any) error {
	return mapPgError(r.Rows.Scan(dest...))
}

func (r pgRows) Err() error {
	return mapPgError(r.Rows.Err())
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNoRows, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w (%s): %w", ErrUniqueViolation, pgErr.ConstraintName, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w (%s): %w", ErrForeignKeyViolation, pgErr.ConstraintName, err)
		}
	}
	return err
}
