package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/city-weather-tracker/internal/cities"
)

var _ cities.Store = (*MemoryStore)(nil)

// MemoryStore is a concurrency-safe in-memory implementation of the city
// store. It backs the service when no DATABASE_URL is configured and the
// unit tests.
type MemoryStore struct {
	mu sync.RWMutex

	// key: city id
	cities map[uuid.UUID]cities.City

	// immutable reference rows, in insertion order
	defaults []cities.DefaultCity
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cities: make(map[uuid.UUID]cities.City),
	}
}

// ListCities returns all cities ordered by temperature descending with
// never-fetched cities last, ties broken by name.
func (s *MemoryStore) ListCities(ctx context.Context) ([]cities.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cities.City, 0, len(s.cities))
	for _, c := range s.cities {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Temperature == nil && b.Temperature == nil:
			return a.Name < b.Name
		case a.Temperature == nil:
			return false
		case b.Temperature == nil:
			return true
		case *a.Temperature != *b.Temperature:
			return *a.Temperature > *b.Temperature
		default:
			return a.Name < b.Name
		}
	})

	return out, nil
}

// InsertCity adds a city, rejecting names that already exist in any casing.
func (s *MemoryStore) InsertCity(ctx context.Context, city cities.City) (cities.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cities {
		if strings.EqualFold(existing.Name, city.Name) {
			return cities.City{}, cities.ErrDuplicateName
		}
	}

	s.cities[city.ID] = city
	return city, nil
}

// DeleteCity removes a city by id.
func (s *MemoryStore) DeleteCity(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cities[id]; !ok {
		return cities.ErrNotFound
	}
	delete(s.cities, id)
	return nil
}

// UpdateTemperatures applies a refresh batch. Updates for ids that no longer
// exist are dropped, matching the row-by-id semantics of the SQL store.
func (s *MemoryStore) UpdateTemperatures(ctx context.Context, updates []cities.TemperatureUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		city, ok := s.cities[u.CityID]
		if !ok {
			continue
		}
		temp := u.Temperature
		ts := u.UpdatedAt
		city.Temperature = &temp
		city.UpdatedAt = &ts
		s.cities[u.CityID] = city
	}
	return nil
}

// ReplaceAllCities drops every city and reinserts the default set with
// temperature and updated_at unset.
func (s *MemoryStore) ReplaceAllCities(ctx context.Context, defaults []cities.DefaultCity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = make(map[uuid.UUID]cities.City, len(defaults))
	for _, d := range defaults {
		s.cities[d.ID] = cities.City{
			ID:        d.ID,
			Name:      d.Name,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
		}
	}
	return nil
}

// HasDefaultCities reports whether the default set has been seeded.
func (s *MemoryStore) HasDefaultCities(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.defaults) > 0, nil
}

// InsertDefaultCities stores the seeded default set.
func (s *MemoryStore) InsertDefaultCities(ctx context.Context, defaults []cities.DefaultCity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = append(s.defaults, defaults...)
	return nil
}

// ListDefaultCities returns the default set in insertion order.
func (s *MemoryStore) ListDefaultCities(ctx context.Context) ([]cities.DefaultCity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]cities.DefaultCity(nil), s.defaults...), nil
}

// Close is a no-op; the memory store holds no external resources.
func (s *MemoryStore) Close() {}
