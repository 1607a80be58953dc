// Package postgres is the store.Store backend used in production: pgx's
// connection pool wrapped so sqlx can drive plain SQL against it, modeled
// on the teacher's registry/postgres package.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/ajs/poefixer/internal/errkit"
	"github.com/ajs/poefixer/store"
	"github.com/ajs/poefixer/store/postgres/schema"
)

// Store is the PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
	db   *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open parses dsn, opens a connection pool with the teacher's reasonable
// defaults, and wraps it for sqlx.
func Open(ctx context.Context, dsn string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to parse PostgreSQL connection string")
	}

	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	if poolConfig.MinConns == 0 {
		poolConfig.MinConns = 2
	}
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = 1 * time.Hour
	}
	if poolConfig.MaxConnIdleTime == 0 {
		poolConfig.MaxConnIdleTime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to create PostgreSQL connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errkit.Wrap(err, "failed to connect to PostgreSQL")
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	sqlxDB := sqlx.NewDb(sqlDB, "pgx")

	return &Store{pool: pool, db: sqlxDB}, nil
}

// EnsureSchema runs the embedded bootstrap SQL files. The DDL uses
// "IF NOT EXISTS", so an already-bootstrapped database is left as it is
// rather than raising "relation already exists"; an error matching
// store.ErrSchemaExists is also treated as success (spec.md §7).
func (s *Store) EnsureSchema(ctx context.Context) error {
	err := schema.Apply(ctx, s.pool)
	if err != nil && errors.Is(err, store.ErrSchemaExists) {
		return nil
	}
	return err
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errkit.Wrap(err, "failed to begin transaction")
	}
	return &tx{tx: sqlTx}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	return err
}
