package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable interaction log, the optional Postgres counterpart of
// the in-memory aggregator. The service runs fine without it; callers hold a
// nil *Store when DATABASE_URL is not configured.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS interactions (
			id                     UUID PRIMARY KEY,
			created_at             TIMESTAMPTZ NOT NULL,
			issue_type             TEXT NOT NULL,
			intent                 TEXT NOT NULL,
			sentiment              TEXT NOT NULL,
			predicted_satisfaction TEXT NOT NULL,
			recommended_priority   TEXT NOT NULL,
			confidence             DOUBLE PRECISION NOT NULL,
			message_length         INTEGER NOT NULL,
			latency_ms             DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS interactions_created_at_idx
			ON interactions (created_at DESC)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
