package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/au-weather-proxy/internal/common"
	"github.com/i474232898/au-weather-proxy/internal/query"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// WarmTarget is a suburb the cache warmer resolves ahead of user requests.
type WarmTarget struct {
	Suburb string
	State  string
}

type AppConfig struct {
	Port string
	Env  string

	// UpstreamTimeout bounds every geocoder and weather provider call.
	UpstreamTimeout time.Duration

	AirQualityURL string
	ArchiveURL    string
	NominatimURL  string
	UserAgent     string

	// GeocoderRateLimit is requests per second towards Nominatim (0 = unlimited).
	GeocoderRateLimit float64

	CacheBackend    string
	CacheMaxEntries int
	RedisURL        string
	DatabaseURL     string

	WarmSuburbs  []WarmTarget
	WarmInterval time.Duration
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Env = getenvDefault("APP_ENV", "production")

	timeout, err := getenvDuration("UPSTREAM_TIMEOUT", 8*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = timeout

	cfg.AirQualityURL = getenvDefault("AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality")
	cfg.ArchiveURL = getenvDefault("ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive")
	cfg.NominatimURL = getenvDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search")
	cfg.UserAgent = getenvDefault("USER_AGENT", "au-weather-proxy/1.0")

	rateLimit, err := strconv.ParseFloat(getenvDefault("GEOCODER_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("invalid GEOCODER_RATE_LIMIT: %q", os.Getenv("GEOCODER_RATE_LIMIT"))
	}
	cfg.GeocoderRateLimit = rateLimit

	cfg.CacheBackend = strings.ToLower(getenvDefault("CACHE_BACKEND", CacheMemory))
	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 0)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	switch cfg.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for the redis cache backend")
		}
	case CachePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres cache backend")
		}
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory, redis or postgres", cfg.CacheBackend)
	}

	targets, err := parseWarmSuburbs(os.Getenv("WARM_SUBURBS"))
	if err != nil {
		return nil, err
	}
	cfg.WarmSuburbs = targets

	interval, err := getenvDuration("WARM_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.WarmInterval = interval

	return cfg, nil
}

// parseWarmSuburbs reads "Suburb:STATE,Suburb:STATE".
func parseWarmSuburbs(s string) ([]WarmTarget, error) {
	var targets []WarmTarget
	for _, item := range common.SplitTrim(s) {
		suburb, state, ok := strings.Cut(item, ":")
		suburb = strings.TrimSpace(suburb)
		state = query.NormalizeState(state)
		if !ok || suburb == "" || !query.ValidState(state) {
			return nil, fmt.Errorf("invalid WARM_SUBURBS entry %q: want Suburb:STATE", item)
		}
		targets = append(targets, WarmTarget{Suburb: suburb, State: state})
	}
	return targets, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
