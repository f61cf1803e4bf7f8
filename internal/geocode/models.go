package geocode

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// Country is appended to every geocoding query.
	Country = "australia"

	SourceNominatim = "nominatim"
	SourceCache     = "cache"
)

var (
	// ErrCacheMiss is returned by a Cache when no entry exists for a key.
	ErrCacheMiss = errors.New("geocode: cache miss")
	// ErrGeocodingFailure wraps every failure to resolve a suburb.
	ErrGeocodingFailure = errors.New("geocoding failed")
	// ErrUpstreamStatus marks a non-success response from the geocoder.
	ErrUpstreamStatus = errors.New("geocoder returned a non-success status")
	// ErrNoResults means the geocoder had no usable administrative area.
	ErrNoResults = errors.New("no administrative area found")
)

// Result is one administrative area as returned to clients.
type Result struct {
	Name        string   `json:"name"`
	BoundingBox []string `json:"boundingBox"`
	Lat         *string  `json:"lat"`
	Lon         *string  `json:"lon"`
}

// Coordinate is a resolved point, kept in the geocoder's decimal text form.
type Coordinate struct {
	Lat string
	Lon string
}

// CacheEntry is the persisted resolution for one suburb/state key.
type CacheEntry struct {
	Suburb    string    `json:"suburb"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Query     string    `json:"query"`
	Results   []Result  `json:"results"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cache is the narrow keyed store behind the resolver. Implementations may
// be shared between processes; concurrent Puts for a key are last-write-wins.
type Cache interface {
	Get(ctx context.Context, key string) (CacheEntry, error)
	Put(ctx context.Context, key string, entry CacheEntry) error
}

// CacheKey normalizes a suburb/state pair into the cache key.
func CacheKey(suburb, state string) string {
	return strings.ToLower(strings.TrimSpace(suburb)) + "|" + strings.ToUpper(strings.TrimSpace(state))
}

// SearchQuery builds the free-text geocoder query for a suburb/state pair.
func SearchQuery(suburb, state string) string {
	return suburb + "," + strings.ToLower(state) + "," + Country
}
