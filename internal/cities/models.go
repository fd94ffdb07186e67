package cities

import (
	"time"

	"github.com/google/uuid"
)

// City is a tracked city. Temperature and UpdatedAt are nil until the first
// successful weather fetch and are always set (or cleared) together.
type City struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Temperature *float64   `json:"temperature"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// DefaultCity is an immutable reference row used only as the source for bulk
// reset. It is never updated after seeding.
type DefaultCity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// TemperatureUpdate carries one successful reading from the refresh batch to
// the store. UpdatedAt is the single "now" captured at batch start.
type TemperatureUpdate struct {
	CityID      uuid.UUID
	Temperature float64
	UpdatedAt   time.Time
}

// RefreshSummary is the aggregate outcome of one batch refresh. Per-city
// failure detail is logged, not reported here.
type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
