package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajasatyajit/QuakeAlert/config"
	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
)

const createProcessedEventsTable = `
	CREATE TABLE IF NOT EXISTS processed_events (
		id          TEXT PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresStore implements Store backed by a processed_events table. The
// full identifier set is loaded at startup; Record inserts before updating
// the in-memory set, preserving the durable-before-visible ordering.
type PostgresStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	pool *pgxpool.Pool
}

// NewPostgresStore connects, ensures the schema, and loads all prior
// identifiers.
func NewPostgresStore(ctx context.Context, cfg config.DedupConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(connectCtx, createProcessedEventsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s := &PostgresStore{seen: make(map[string]struct{}), pool: pool}
	if err := s.load(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Dedup table loaded", "identifiers", len(s.seen))
	return s, nil
}

// load reads the full processed-id set
func (s *PostgresStore) load(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT id FROM processed_events`)
	if err != nil {
		return fmt.Errorf("load processed events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan processed event: %w", err)
		}
		s.seen[id] = struct{}{}
	}
	return rows.Err()
}

// Contains answers a membership query from the in-memory set
func (s *PostgresStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Record inserts the identifier; the in-memory set is updated only after
// the insert committed.
func (s *PostgresStore) Record(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO processed_events (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return apperrors.PersistenceError{Operation: "insert", Err: err}
	}

	s.seen[id] = struct{}{}
	return nil
}

// Len returns the number of known identifiers
func (s *PostgresStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
