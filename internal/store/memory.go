package store

import (
	"context"
	"sync"

	"github.com/i474232898/au-weather-proxy/internal/geocode"
)

// ErrNotFound is returned when no entry exists for a key.
var ErrNotFound = geocode.ErrCacheMiss

// MemoryStore is a concurrency-safe in-process geocode cache. Entries never
// expire; maxEntries > 0 caps the number of keys, dropping the oldest write.
type MemoryStore struct {
	mu sync.RWMutex

	data  map[string]geocode.CacheEntry
	order []string

	maxEntries int
}

// NewMemoryStore creates a new MemoryStore. maxEntries <= 0 means unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]geocode.CacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the entry stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (geocode.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return geocode.CacheEntry{}, ErrNotFound
	}
	return entry, nil
}

// Put stores entry under key, replacing any previous value.
func (s *MemoryStore) Put(_ context.Context, key string, entry geocode.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists {
		s.order = append(s.order, key)
	}
	s.data[key] = entry

	// Enforce retention by count.
	if s.maxEntries > 0 && len(s.order) > s.maxEntries {
		over := len(s.order) - s.maxEntries
		for _, k := range s.order[:over] {
			delete(s.data, k)
		}
		s.order = s.order[over:]
	}
	return nil
}

// Len returns the number of cached keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
