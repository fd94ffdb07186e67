package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// OpenMeteo implements the Client interface for Open-Meteo. The API needs no
// key; coordinates are passed through as-is without range validation.
type OpenMeteo struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteo creates an Open-Meteo client on top of the shared HTTP client.
// The caller owns the client's timeout; a circuit breaker guards the provider
// when it is hard-down, failing fast without retrying.
func NewOpenMeteo(client *http.Client) *OpenMeteo {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteo{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: cb,
	}
}

func (p *OpenMeteo) Name() string {
	return p.name
}

// CurrentTemperature issues one request for the coordinate pair and returns
// the current temperature in degrees Celsius. Any failure comes back as a
// *FetchError; there are no retries.
func (p *OpenMeteo) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current_weather", "true")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, &FetchError{Provider: p.name, Err: err}
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		resp, execErr := p.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return 0, &FetchError{Provider: p.name, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return 0, &FetchError{Provider: p.name, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather *struct {
			Temperature *float64 `json:"temperature"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, &FetchError{Provider: p.name, Err: err}
	}

	if payload.CurrentWeather == nil || payload.CurrentWeather.Temperature == nil {
		return 0, &FetchError{Provider: p.name, Err: ErrNoTemperature}
	}

	return *payload.CurrentWeather.Temperature, nil
}
