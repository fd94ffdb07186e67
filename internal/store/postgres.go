package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/city-weather-tracker/internal/cities"
)

var _ cities.Store = (*PostgresStore)(nil)

// PostgresStore is the pgx-backed implementation of the city store. Schema is
// owned by the embedded goose migrations, see RunMigrations.
type PostgresStore struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{logger: logger, pgpool: pool}, nil
}

// ListCities returns all cities ordered by temperature descending with
// never-fetched cities last, ties broken by name.
func (s *PostgresStore) ListCities(ctx context.Context) ([]cities.City, error) {
	query := `
        SELECT id, name, latitude, longitude, temperature, updated_at
        FROM cities
        ORDER BY temperature DESC NULLS LAST, name ASC
    `

	rows, err := s.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var out []cities.City
	for rows.Next() {
		var city cities.City
		var temp sql.NullFloat64
		var updatedAt sql.NullTime

		err := rows.Scan(&city.ID, &city.Name, &city.Latitude, &city.Longitude, &temp, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}

		if temp.Valid {
			city.Temperature = &temp.Float64
		}
		if updatedAt.Valid {
			ts := updatedAt.Time.UTC()
			city.UpdatedAt = &ts
		}

		out = append(out, city)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	return out, nil
}

// InsertCity adds a city. Case-insensitive name uniqueness is enforced by the
// cities_name_lower_idx index.
func (s *PostgresStore) InsertCity(ctx context.Context, city cities.City) (cities.City, error) {
	query := `
        INSERT INTO cities (id, name, latitude, longitude)
        VALUES ($1, $2, $3, $4)
    `

	_, err := s.pgpool.Exec(ctx, query, city.ID, city.Name, city.Latitude, city.Longitude)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return cities.City{}, cities.ErrDuplicateName
		}
		return cities.City{}, fmt.Errorf("failed to insert city: %w", err)
	}

	return city, nil
}

// DeleteCity removes a city by id.
func (s *PostgresStore) DeleteCity(ctx context.Context, id uuid.UUID) error {
	result, err := s.pgpool.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
	}
	if result.RowsAffected() == 0 {
		return cities.ErrNotFound
	}
	return nil
}

// UpdateTemperatures applies a refresh batch in a single transaction. Rows
// deleted since the batch started simply match nothing.
func (s *PostgresStore) UpdateTemperatures(ctx context.Context, updates []cities.TemperatureUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE cities
        SET temperature = $1, updated_at = $2
        WHERE id = $3
    `
	for _, u := range updates {
		if _, err := tx.Exec(ctx, query, u.Temperature, u.UpdatedAt, u.CityID); err != nil {
			return fmt.Errorf("failed to update temperature for city %s: %w", u.CityID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit temperature updates: %w", err)
	}
	return nil
}

// ReplaceAllCities drops every city and reinserts the default set with
// temperature and updated_at unset, atomically.
func (s *PostgresStore) ReplaceAllCities(ctx context.Context, defaults []cities.DefaultCity) error {
	tx, err := s.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cities`); err != nil {
		return fmt.Errorf("failed to clear cities: %w", err)
	}

	if len(defaults) > 0 {
		builder := squirrel.Insert("cities").
			PlaceholderFormat(squirrel.Dollar).
			Columns("id", "name", "latitude", "longitude")
		for _, d := range defaults {
			builder = builder.Values(d.ID, d.Name, d.Latitude, d.Longitude)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build reset insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert default cities: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit city reset: %w", err)
	}

	s.logger.InfoContext(ctx, "cities reset to default set", slog.Int("count", len(defaults)))
	return nil
}

// HasDefaultCities reports whether the default set has been seeded.
func (s *PostgresStore) HasDefaultCities(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pgpool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM default_cities)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check default cities: %w", err)
	}
	return exists, nil
}

// InsertDefaultCities stores the seeded default set.
func (s *PostgresStore) InsertDefaultCities(ctx context.Context, defaults []cities.DefaultCity) error {
	if len(defaults) == 0 {
		return nil
	}

	builder := squirrel.Insert("default_cities").
		PlaceholderFormat(squirrel.Dollar).
		Columns("id", "name", "latitude", "longitude")
	for _, d := range defaults {
		builder = builder.Values(d.ID, d.Name, d.Latitude, d.Longitude)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build seed insert: %w", err)
	}
	if _, err := s.pgpool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert default cities: %w", err)
	}
	return nil
}

// ListDefaultCities returns the default set ordered by name.
func (s *PostgresStore) ListDefaultCities(ctx context.Context) ([]cities.DefaultCity, error) {
	query := `
        SELECT id, name, latitude, longitude
        FROM default_cities
        ORDER BY name ASC
    `

	rows, err := s.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query default cities: %w", err)
	}
	defer rows.Close()

	var out []cities.DefaultCity
	for rows.Next() {
		var d cities.DefaultCity
		if err := rows.Scan(&d.ID, &d.Name, &d.Latitude, &d.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan default city row: %w", err)
		}
		out = append(out, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating default city rows: %w", err)
	}

	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pgpool.Close()
}
