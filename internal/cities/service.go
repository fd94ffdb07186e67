package cities

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/city-weather-tracker/internal/weather"
)

// Service implements the city board operations: list/add/remove/reset over
// the stored city list, and the concurrent batch refresh.
type Service struct {
	store  Store
	client weather.Client
	window time.Duration
	logger *slog.Logger

	// nowFn stands in for time.Now so batch timestamps are testable.
	nowFn func() time.Time
}

// NewService creates a new Service. window is the freshness window applied
// by the staleness filter; values <= 0 fall back to the 15-minute default.
func NewService(store Store, client weather.Client, window time.Duration, logger *slog.Logger) *Service {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Service{
		store:  store,
		client: client,
		window: window,
		logger: logger,
		nowFn:  time.Now,
	}
}

// RefreshAll runs one batch refresh: load every city, skip the fresh ones,
// fetch the rest concurrently, and commit all successful readings in a single
// store transaction. A failed fetch never aborts the batch or touches its
// city; storage errors do abort and propagate.
func (s *Service) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	all, err := s.store.ListCities(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("load cities: %w", err)
	}

	// One shared timestamp for the whole batch keeps later staleness
	// comparisons consistent regardless of how long individual fetches take.
	now := s.nowFn().UTC()

	var stale []City
	for _, c := range all {
		if NeedsRefresh(c.UpdatedAt, now, s.window) {
			stale = append(stale, c)
		}
	}

	summary := RefreshSummary{Skipped: len(all) - len(stale)}
	if len(stale) == 0 {
		s.logger.InfoContext(ctx, "refresh batch: nothing to fetch", slog.Int("skipped", summary.Skipped))
		return summary, nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		updates []TemperatureUpdate
		failed  int
	)

	for _, c := range stale {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()

			temp, err := s.client.CurrentTemperature(ctx, c.Latitude, c.Longitude)
			if err != nil {
				// Partial success: drop this city, keep the rest.
				s.logger.WarnContext(ctx, "weather fetch failed",
					slog.String("city", c.Name),
					slog.String("provider", s.client.Name()),
					slog.Any("error", err))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			updates = append(updates, TemperatureUpdate{
				CityID:      c.ID,
				Temperature: temp,
				UpdatedAt:   now,
			})
			mu.Unlock()
		}()
	}

	wg.Wait()

	summary.Refreshed = len(updates)
	summary.Failed = failed

	if len(updates) > 0 {
		if err := s.store.UpdateTemperatures(ctx, updates); err != nil {
			return RefreshSummary{}, fmt.Errorf("commit refreshed temperatures: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "refresh batch completed",
		slog.Int("refreshed", summary.Refreshed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// ListCities delegates to the underlying store.
func (s *Service) ListCities(ctx context.Context) ([]City, error) {
	return s.store.ListCities(ctx)
}

// AddCity stores a new city with no temperature yet. Duplicate names
// (case-insensitive) come back as ErrDuplicateName.
func (s *Service) AddCity(ctx context.Context, name string, lat, lon float64) (City, error) {
	city := City{
		ID:        uuid.New(),
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
	return s.store.InsertCity(ctx, city)
}

// RemoveCity deletes a city by id. A missing id is a no-op, not an error.
func (s *Service) RemoveCity(ctx context.Context, id uuid.UUID) error {
	err := s.store.DeleteCity(ctx, id)
	if errors.Is(err, ErrNotFound) {
		s.logger.DebugContext(ctx, "remove of unknown city ignored", slog.String("id", id.String()))
		return nil
	}
	return err
}

// ResetCities replaces the whole city list with the seeded default set and
// returns how many cities it now contains. Every reinserted city starts with
// temperature and updated_at unset.
func (s *Service) ResetCities(ctx context.Context) (int, error) {
	defaults, err := s.store.ListDefaultCities(ctx)
	if err != nil {
		return 0, fmt.Errorf("load default cities: %w", err)
	}

	if err := s.store.ReplaceAllCities(ctx, defaults); err != nil {
		return 0, fmt.Errorf("reset cities: %w", err)
	}

	s.logger.InfoContext(ctx, "city list reset", slog.Int("cities", len(defaults)))
	return len(defaults), nil
}
