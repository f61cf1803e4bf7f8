package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/au-weather-proxy/internal/geocode"
)

const createGeocodeCacheTable = `
	CREATE TABLE IF NOT EXISTS suburb_search_cache (
		cache_key  TEXT PRIMARY KEY,
		entry      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps geocode cache entries in a single JSONB table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgresStore connects to databaseURL and creates the table if needed.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := NewPostgresStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the cache table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createGeocodeCacheTable); err != nil {
		return fmt.Errorf("postgres: failed to create cache table: %w", err)
	}
	return nil
}

// Get returns the entry stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (geocode.CacheEntry, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT entry FROM suburb_search_cache WHERE cache_key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return geocode.CacheEntry{}, ErrNotFound
	}
	if err != nil {
		return geocode.CacheEntry{}, fmt.Errorf("postgres: failed to read cache entry: %w", err)
	}

	var entry geocode.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return geocode.CacheEntry{}, fmt.Errorf("postgres: failed to decode cache entry: %w", err)
	}
	return entry, nil
}

// Put upserts entry under key; the last writer wins.
func (s *PostgresStore) Put(ctx context.Context, key string, entry geocode.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode cache entry: %w", err)
	}

	query := `
		INSERT INTO suburb_search_cache (cache_key, entry, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cache_key) DO UPDATE
		SET entry = EXCLUDED.entry, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, key, raw); err != nil {
		return fmt.Errorf("postgres: failed to save cache entry: %w", err)
	}
	return nil
}

// Health checks database connectivity.
func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
