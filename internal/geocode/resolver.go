package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/au-weather-proxy/internal/logger"
)

// Geocoder is the upstream search capability used on cache misses.
type Geocoder interface {
	Search(ctx context.Context, q string) ([]Result, error)
}

// Resolver resolves suburb/state pairs through a read-through cache.
type Resolver struct {
	cache    Cache
	geocoder Geocoder
	log      *logger.Logger
	now      func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(cache Cache, geocoder Geocoder, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{
		cache:    cache,
		geocoder: geocoder,
		log:      log,
		now:      time.Now,
	}
}

// Projection turns a cached or freshly fetched result list into the shape a
// caller needs.
type Projection[T any] func(results []Result) (T, error)

// ResultList returns the administrative areas as-is, possibly empty.
func ResultList(results []Result) ([]Result, error) {
	return results, nil
}

// FirstCoordinate returns the coordinate of the first administrative area.
func FirstCoordinate(results []Result) (Coordinate, error) {
	if len(results) == 0 {
		return Coordinate{}, ErrNoResults
	}
	first := results[0]
	if first.Lat == nil || first.Lon == nil {
		return Coordinate{}, ErrNoResults
	}
	return Coordinate{Lat: *first.Lat, Lon: *first.Lon}, nil
}

// Resolve looks the pair up in the cache and falls back to the geocoder.
// It returns the projected value and its source tag. Only non-empty result
// lists are written back. Concurrent misses for one key may both reach the
// geocoder; the writes are idempotent.
func Resolve[T any](ctx context.Context, r *Resolver, suburb, state string, project Projection[T]) (T, string, error) {
	var zero T
	key := CacheKey(suburb, state)

	entry, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		v, err := project(entry.Results)
		if err != nil {
			return zero, "", fmt.Errorf("%w: %w", ErrGeocodingFailure, err)
		}
		return v, SourceCache, nil
	case !errors.Is(err, ErrCacheMiss):
		r.log.CacheError("get", key, err)
	}

	q := SearchQuery(suburb, state)
	results, err := r.geocoder.Search(ctx, q)
	if err != nil {
		return zero, "", fmt.Errorf("%w: %w", ErrGeocodingFailure, err)
	}

	if len(results) > 0 {
		entry := CacheEntry{
			Suburb:    suburb,
			State:     state,
			Country:   Country,
			Query:     q,
			Results:   results,
			Source:    SourceNominatim,
			UpdatedAt: r.now().UTC(),
		}
		if err := r.cache.Put(ctx, key, entry); err != nil {
			r.log.CacheError("put", key, err)
		}
	}

	v, err := project(results)
	if err != nil {
		return zero, "", fmt.Errorf("%w: %w", ErrGeocodingFailure, err)
	}
	return v, SourceNominatim, nil
}

// Results resolves the full administrative result list.
func (r *Resolver) Results(ctx context.Context, suburb, state string) ([]Result, string, error) {
	return Resolve(ctx, r, suburb, state, ResultList)
}

// Coordinate resolves the first administrative area's coordinate.
func (r *Resolver) Coordinate(ctx context.Context, suburb, state string) (Coordinate, string, error) {
	return Resolve(ctx, r, suburb, state, FirstCoordinate)
}
