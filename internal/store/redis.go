package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/au-weather-proxy/internal/geocode"
)

const defaultRedisPrefix = "suburbSearchCache:"

// RedisStore keeps geocode cache entries as JSON strings in Redis. Keys have
// no TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore parses a redis:// URL, connects and pings.
func OpenRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewRedisStore(client, ""), nil
}

// Get returns the entry stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (geocode.CacheEntry, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return geocode.CacheEntry{}, ErrNotFound
	}
	if err != nil {
		return geocode.CacheEntry{}, fmt.Errorf("redis: get %s: %w", key, err)
	}

	var entry geocode.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return geocode.CacheEntry{}, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return entry, nil
}

// Put stores entry under key, replacing any previous value.
func (s *RedisStore) Put(ctx context.Context, key string, entry geocode.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Health checks Redis connectivity.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
