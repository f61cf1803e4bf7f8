package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/au-weather-proxy/internal/config"
	"github.com/i474232898/au-weather-proxy/internal/geocode"
	"github.com/i474232898/au-weather-proxy/internal/logger"
)

// Resolver is the read-through lookup the warmer drives.
type Resolver interface {
	Results(ctx context.Context, suburb, state string) ([]geocode.Result, string, error)
}

// Scheduler periodically resolves configured suburbs so that the first user
// request for them is served from the geocode cache. Entries already cached
// are left untouched.
type Scheduler struct {
	scheduler *gocron.Scheduler
	resolver  Resolver
	targets   []config.WarmTarget
	interval  time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a new Scheduler.
func New(targets []config.WarmTarget, interval time.Duration, resolver Resolver, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		resolver:  resolver,
		targets:   targets,
		interval:  interval,
		timeout:   30 * time.Second,
		log:       log,
	}
}

// Start schedules the warm job and starts the underlying scheduler. The first
// run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.targets) == 0 {
		s.log.Info("scheduler: no suburbs configured; nothing to warm")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce resolves every target concurrently and returns how many resolved.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.log.Info("scheduler: running cache warm job", slog.Int("targets", len(s.targets)))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		warmed int
	)
	for _, t := range s.targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			_, source, err := s.resolver.Results(ctx, t.Suburb, t.State)
			if err != nil {
				s.log.Warn("scheduler: warm failed",
					slog.String("suburb", t.Suburb),
					slog.String("state", t.State),
					slog.String("error", err.Error()),
				)
				return
			}
			s.log.Debug("scheduler: warmed",
				slog.String("suburb", t.Suburb),
				slog.String("state", t.State),
				slog.String("source", source),
			)

			mu.Lock()
			warmed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.log.Info("scheduler: completed cache warm job", slog.Int("warmed", warmed))
	return warmed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
