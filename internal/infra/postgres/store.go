// Package postgres is the persistence layer. Repositories share one
// pgxpool.Pool owned by Store; the pool is constructed at process start and
// closed at shutdown. Mutations that touch a transaction row and its account
// balance run inside a single database transaction, which is the only
// atomicity primitive the ledger relies on.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds the shared connection pool used by all repositories.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("New: parsing database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("New: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("New: pinging database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool. Call at shutdown.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
