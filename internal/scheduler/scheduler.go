package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/city-weather-tracker/internal/cities"
)

// Scheduler periodically runs the batch temperature refresh. The staleness
// window still applies inside each run, so a short interval does not mean
// more provider calls.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *cities.Service
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. An interval of zero or less disables
// periodic refreshes.
func New(interval time.Duration, service *cities.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("periodic refresh disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.logger.DebugContext(ctx, "running scheduled refresh")
		if _, err := s.service.RefreshAll(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled refresh failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("periodic refresh enabled", slog.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
