package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather-tracker/internal/cities"
	"github.com/i474232898/city-weather-tracker/internal/store"
)

// stubClient satisfies weather.Client without any network access.
type stubClient struct {
	fetch func(lat, lon float64) (float64, error)
}

func (s stubClient) Name() string { return "stub" }

func (s stubClient) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	if s.fetch == nil {
		return 0, errors.New("no weather stub configured")
	}
	return s.fetch(lat, lon)
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func newTestApp(t *testing.T, fetch func(lat, lon float64) (float64, error)) (*fiber.App, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := cities.NewService(memStore, stubClient{fetch: fetch}, 15*time.Minute, logger)
	return NewApp(svc), memStore
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func listCities(t *testing.T, app *fiber.App) []cities.City {
	t.Helper()

	resp := doJSON(t, app, http.MethodGet, "/api/v1/cities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []cities.City
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	return listed
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListCitiesEmpty(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/cities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)), "empty list must encode as an array")
}

func TestAddCity(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name":      "Paris",
		"latitude":  48.8566,
		"longitude": 2.3522,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created cities.City
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Paris", created.Name)
	assert.Equal(t, 48.8566, created.Latitude)
	assert.Equal(t, 2.3522, created.Longitude)
	assert.Nil(t, created.Temperature)
	assert.Nil(t, created.UpdatedAt)

	listed := listCities(t, app)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestAddCityZeroCoordinates(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name":      "Null Island",
		"latitude":  0.0,
		"longitude": 0.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "0.0 is a valid coordinate")
}

func TestAddCityValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name": "Paris",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestAddCityMalformedBody(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cities", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddCityDuplicateName(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name": "Paris", "latitude": 48.8566, "longitude": 2.3522,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name": "paris", "latitude": 48.8566, "longitude": 2.3522,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate check ignores casing")

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Error)
	assert.Equal(t, "city with this name already exists", body.Message)
}

func TestDeleteCity(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name": "Rome", "latitude": 41.9, "longitude": 12.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created cities.City
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cities/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, listCities(t, app))

	// Deleting the same city again is a no-op.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cities/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeleteCityInvalidID(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/cities/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetCities(t *testing.T) {
	app, memStore := newTestApp(t, nil)

	ctx := context.Background()
	defaults := []cities.DefaultCity{
		{ID: uuid.New(), Name: "Lisbon", Latitude: 38.72, Longitude: -9.14},
		{ID: uuid.New(), Name: "Madrid", Latitude: 40.42, Longitude: -3.70},
	}
	require.NoError(t, memStore.InsertDefaultCities(ctx, defaults))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities", fiber.Map{
		"name": "Custom", "latitude": 1.0, "longitude": 2.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cities/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)

	listed := listCities(t, app)
	require.Len(t, listed, 2)
	assert.Equal(t, "Lisbon", listed[0].Name)
	assert.Equal(t, "Madrid", listed[1].Name)
}

func TestRefreshCities(t *testing.T) {
	app, memStore := newTestApp(t, func(lat, lon float64) (float64, error) {
		return 21.5, nil
	})

	ctx := context.Background()
	_, err := memStore.InsertCity(ctx, cities.City{ID: uuid.New(), Name: "Stale", Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	fresh, err := memStore.InsertCity(ctx, cities.City{ID: uuid.New(), Name: "Fresh", Latitude: 3, Longitude: 4})
	require.NoError(t, err)
	require.NoError(t, memStore.UpdateTemperatures(ctx, []cities.TemperatureUpdate{
		{CityID: fresh.ID, Temperature: 10, UpdatedAt: time.Now().UTC()},
	}))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary cities.RefreshSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, cities.RefreshSummary{Refreshed: 1, Skipped: 1}, summary)

	listed := listCities(t, app)
	byName := map[string]cities.City{}
	for _, c := range listed {
		byName[c.Name] = c
	}
	require.NotNil(t, byName["Stale"].Temperature)
	assert.Equal(t, 21.5, *byName["Stale"].Temperature)
	require.NotNil(t, byName["Fresh"].Temperature)
	assert.Equal(t, 10.0, *byName["Fresh"].Temperature, "fresh city keeps its reading")
}

func TestRefreshCitiesProviderDown(t *testing.T) {
	app, memStore := newTestApp(t, func(lat, lon float64) (float64, error) {
		return 0, errors.New("provider unavailable")
	})

	ctx := context.Background()
	_, err := memStore.InsertCity(ctx, cities.City{ID: uuid.New(), Name: "Oslo", Latitude: 59.91, Longitude: 10.75})
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cities/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "fetch failures do not fail the endpoint")

	var summary cities.RefreshSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, cities.RefreshSummary{Failed: 1}, summary)

	listed := listCities(t, app)
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].Temperature)
	assert.Nil(t, listed[0].UpdatedAt)
}
