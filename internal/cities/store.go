package cities

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateName is returned by InsertCity when a case-insensitive
	// name match already exists.
	ErrDuplicateName = errors.New("city already exists")

	// ErrNotFound is returned when an operation targets a city id that does
	// not exist. Callers treat it as a no-op.
	ErrNotFound = errors.New("city not found")
)

// Store is the contract every city store (Postgres, in-memory) must satisfy.
// The handle is constructed at process start and closed at shutdown; there is
// no package-level store state.
type Store interface {
	// ListCities returns all cities ordered by temperature descending with
	// nulls last, then name ascending.
	ListCities(ctx context.Context) ([]City, error)

	// InsertCity stores a new city. Name uniqueness is case-insensitive.
	InsertCity(ctx context.Context, city City) (City, error)

	// DeleteCity removes a city by id, returning ErrNotFound when absent.
	DeleteCity(ctx context.Context, id uuid.UUID) error

	// UpdateTemperatures applies a refresh batch in a single transaction.
	// Each row sets temperature and updated_at together; ids that no longer
	// exist are skipped.
	UpdateTemperatures(ctx context.Context, updates []TemperatureUpdate) error

	// ReplaceAllCities deletes every city and reinserts one per default,
	// with temperature and updated_at unset, in a single transaction.
	ReplaceAllCities(ctx context.Context, defaults []DefaultCity) error

	// HasDefaultCities reports whether the default set was already seeded.
	HasDefaultCities(ctx context.Context) (bool, error)

	// InsertDefaultCities stores the seeded default set.
	InsertDefaultCities(ctx context.Context, defaults []DefaultCity) error

	// ListDefaultCities returns the default set used by bulk reset.
	ListDefaultCities(ctx context.Context) ([]DefaultCity, error)

	// Close releases the underlying storage handle.
	Close()
}
