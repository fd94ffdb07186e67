package weather

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoTemperature is returned (wrapped in a FetchError) when the provider
// response decodes fine but carries no current temperature field.
var ErrNoTemperature = errors.New("response has no current temperature")

// FetchError reports a single failed attempt to obtain a reading from the
// weather provider: network failure, timeout, non-success status, or a
// response body without the expected temperature field.
type FetchError struct {
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client abstracts a current-weather data source (e.g. Open-Meteo).
// Implementations perform exactly one outbound call per invocation and do
// not retry on failure.
type Client interface {
	Name() string
	CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error)
}
