// Package seed loads the default city dataset shipped with the binary and
// installs it into the store on first run.
package seed

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/i474232898/city-weather-tracker/internal/cities"
)

var requiredColumns = []string{"name", "latitude", "longitude"}

// Load parses a default-city CSV file. Column order is resolved by the
// header, which must contain name, latitude and longitude.
func Load(path string) ([]cities.DefaultCity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read seed header: %w", err)
	}

	idx := headerIndex(head)
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q in seed header", c)
		}
	}

	var defaults []cities.DefaultCity
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		line++

		name := strings.TrimSpace(rec[idx["name"]])
		if name == "" {
			return nil, fmt.Errorf("empty city name on line %d", line)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["latitude"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude on line %d: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["longitude"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude on line %d: %w", line, err)
		}

		defaults = append(defaults, cities.DefaultCity{
			ID:        uuid.New(),
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
		})
	}

	if len(defaults) == 0 {
		return nil, fmt.Errorf("seed file %s has no city rows", path)
	}

	return defaults, nil
}

func headerIndex(head []string) map[string]int {
	m := map[string]int{}
	for i, c := range head {
		c = strings.TrimSpace(strings.ToLower(c))
		c = strings.TrimPrefix(c, "\ufeff")
		m[c] = i
	}
	return m
}

// EnsureDefaultCities seeds the default city set from the CSV dataset on
// first run. Defaults only feed the reset operation; the working city list
// is never touched here.
func EnsureDefaultCities(ctx context.Context, store cities.Store, path string, logger *slog.Logger) error {
	seeded, err := store.HasDefaultCities(ctx)
	if err != nil {
		return fmt.Errorf("failed to check default cities: %w", err)
	}
	if seeded {
		logger.DebugContext(ctx, "default cities already seeded")
		return nil
	}

	defaults, err := Load(path)
	if err != nil {
		return err
	}

	if err := store.InsertDefaultCities(ctx, defaults); err != nil {
		return err
	}

	logger.InfoContext(ctx, "seeded default cities",
		slog.Int("count", len(defaults)),
		slog.String("file", path))
	return nil
}
