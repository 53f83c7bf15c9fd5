// Package store is the Postgres persistence layer. One file per
// aggregate; multi-row writes go through a single transaction.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"counsel-scheduling-api/internal/scheduling"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// notFound maps pgx's no-rows sentinel onto the domain taxonomy so
// callers never see a driver error for a missing record.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return scheduling.ErrNotFound
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
