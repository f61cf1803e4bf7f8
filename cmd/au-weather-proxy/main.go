package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/au-weather-proxy/internal/api/http"
	"github.com/i474232898/au-weather-proxy/internal/config"
	"github.com/i474232898/au-weather-proxy/internal/geocode"
	"github.com/i474232898/au-weather-proxy/internal/logger"
	"github.com/i474232898/au-weather-proxy/internal/scheduler"
	"github.com/i474232898/au-weather-proxy/internal/store"
	"github.com/i474232898/au-weather-proxy/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := logger.New(cfg.Env)
	slog.SetDefault(appLog.Logger)

	ctx := context.Background()

	cache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		appLog.Error("failed to open geocode cache", slog.String("backend", cfg.CacheBackend), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeCache()

	// Shared HTTP client for outbound calls; per-call deadlines come from context.
	httpClient := &http.Client{}

	nominatim := geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:       cfg.NominatimURL,
		UserAgent:     cfg.UserAgent,
		Client:        httpClient,
		Timeout:       cfg.UpstreamTimeout,
		RatePerSecond: cfg.GeocoderRateLimit,
	})
	resolver := geocode.NewResolver(cache, nominatim, appLog)

	dispatcher := providers.NewOpenMeteo(providers.OpenMeteoConfig{
		AirQualityURL: cfg.AirQualityURL,
		ArchiveURL:    cfg.ArchiveURL,
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.UpstreamTimeout,
		Client:        httpClient,
	})

	// Cache warmer for configured suburbs.
	sched := scheduler.New(cfg.WarmSuburbs, cfg.WarmInterval, resolver, appLog)
	if err := sched.Start(); err != nil {
		appLog.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               httpapi.ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.UpstreamTimeout*2 + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware. The access log format leaves out query strings.
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Log:        appLog,
		Cache:      cache,
	})

	go func() {
		appLog.Info("http server listening", slog.String("port", cfg.Port), slog.String("cache", cfg.CacheBackend))
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLog.Error("fiber server stopped", slog.String("error", err.Error()))
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLog.Error("error during shutdown", slog.String("error", err.Error()))
	}
}

// openCache builds the configured geocode cache and its release function.
func openCache(ctx context.Context, cfg *config.AppConfig) (geocode.Cache, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.CacheBackend {
	case config.CacheRedis:
		s, err := store.OpenRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.CachePostgres:
		s, err := store.OpenPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.CacheMemory:
		return store.NewMemoryStore(cfg.CacheMaxEntries), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
