// Package store provides the SQLite-backed travel inventory.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultLimit caps search results when the caller passes no limit.
const DefaultLimit = 20

// TravelStore implements the travel inventory using SQLite.
type TravelStore struct {
	db *sql.DB
}

// NewTravelStore opens the database, runs migrations and seeds sample
// inventory when the tables are empty.
func NewTravelStore(dsn string) (*TravelStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &TravelStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *TravelStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *TravelStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS flights (
			flight_id INTEGER PRIMARY KEY,
			flight_no TEXT NOT NULL,
			departure_airport TEXT NOT NULL,
			arrival_airport TEXT NOT NULL,
			scheduled_departure TEXT NOT NULL,
			scheduled_arrival TEXT NOT NULL,
			price_chf REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_departure ON flights(departure_airport)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_arrival ON flights(arrival_airport)`,
		`CREATE TABLE IF NOT EXISTS hotels (
			hotel_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			price_tier TEXT NOT NULL,
			price_chf REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hotels_location ON hotels(location)`,
		`CREATE TABLE IF NOT EXISTS cars (
			car_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			price_tier TEXT NOT NULL,
			price_chf REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cars_location ON cars(location)`,
		`CREATE TABLE IF NOT EXISTS excursions (
			excursion_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			keywords TEXT,
			price_chf REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_excursions_location ON excursions(location)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// seed populates sample inventory. Idempotent: skipped when the flights
// table already has rows.
func (s *TravelStore) seed() error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM flights`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeds := []struct {
		query string
		rows  [][]any
	}{
		{
			query: `INSERT INTO flights (flight_no, departure_airport, arrival_airport, scheduled_departure, scheduled_arrival, price_chf) VALUES (?, ?, ?, ?, ?, ?)`,
			rows: [][]any{
				{"LX123", "ZRH", "JFK", "2026-09-02T09:40:00Z", "2026-09-02T18:05:00Z", 780.0},
				{"LX18", "ZRH", "JFK", "2026-09-02T13:15:00Z", "2026-09-02T21:45:00Z", 845.0},
				{"LX317", "ZRH", "LHR", "2026-09-02T07:10:00Z", "2026-09-02T08:05:00Z", 210.0},
				{"LX638", "ZRH", "CDG", "2026-09-02T10:25:00Z", "2026-09-02T11:35:00Z", 185.0},
				{"LX1070", "ZRH", "FRA", "2026-09-02T17:50:00Z", "2026-09-02T18:55:00Z", 160.0},
				{"LX19", "JFK", "ZRH", "2026-09-03T22:00:00Z", "2026-09-04T11:40:00Z", 810.0},
				{"LX333", "LHR", "ZRH", "2026-09-03T09:30:00Z", "2026-09-03T12:15:00Z", 225.0},
			},
		},
		{
			query: `INSERT INTO hotels (name, location, price_tier, price_chf) VALUES (?, ?, ?, ?)`,
			rows: [][]any{
				{"Hotel Schweizerhof", "Zurich", "Luxury", 450.0},
				{"Alpenblick Inn", "Zurich", "Midscale", 180.0},
				{"Lakeside Budget Rooms", "Zurich", "Economy", 95.0},
				{"The Grand Metropolitan", "London", "Luxury", 520.0},
				{"Hotel Lumiere", "Paris", "Upscale", 310.0},
				{"Brooklyn Harbor Hotel", "New York", "Midscale", 260.0},
			},
		},
		{
			query: `INSERT INTO cars (name, location, price_tier, price_chf) VALUES (?, ?, ?, ?)`,
			rows: [][]any{
				{"Economy Hatchback", "Zurich", "Economy", 55.0},
				{"Compact SUV", "Zurich", "Midscale", 95.0},
				{"Executive Sedan", "Zurich", "Luxury", 190.0},
				{"City Compact", "Paris", "Economy", 60.0},
				{"Estate Wagon", "Frankfurt", "Midscale", 85.0},
			},
		},
		{
			query: `INSERT INTO excursions (name, location, keywords, price_chf) VALUES (?, ?, ?, ?)`,
			rows: [][]any{
				{"Old Town Walking Tour", "Zurich", "history,sightseeing", 35.0},
				{"Lake Zurich Cruise", "Zurich", "boat,scenic", 48.0},
				{"Uetliberg Hike", "Zurich", "hiking,panorama", 20.0},
				{"Seine River Cruise", "Paris", "boat,romantic", 42.0},
				{"Thames Boat Tour", "London", "boat,sightseeing", 38.0},
			},
		},
	}

	for _, seed := range seeds {
		for _, row := range seed.rows {
			if _, err := s.db.Exec(seed.query, row...); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
		}
	}
	return nil
}

// SearchFlights returns flights filtered by departure and/or arrival
// airport code (exact match, upper-cased). Rows come back in insertion
// (rowid) order.
func (s *TravelStore) SearchFlights(ctx context.Context, departure, arrival string, limit int) ([]map[string]any, error) {
	query := `SELECT * FROM flights WHERE 1=1`
	var args []any
	if departure != "" {
		query += ` AND departure_airport = ?`
		args = append(args, strings.ToUpper(departure))
	}
	if arrival != "" {
		query += ` AND arrival_airport = ?`
		args = append(args, strings.ToUpper(arrival))
	}
	query += ` ORDER BY flight_id LIMIT ?`
	args = append(args, normalizeLimit(limit))
	return s.queryRows(ctx, query, args...)
}

// SearchHotels returns hotels whose location contains the given substring.
func (s *TravelStore) SearchHotels(ctx context.Context, location string, limit int) ([]map[string]any, error) {
	return s.searchByLocation(ctx, "hotels", "hotel_id", location, limit)
}

// SearchCars returns rental cars whose location contains the given substring.
func (s *TravelStore) SearchCars(ctx context.Context, location string, limit int) ([]map[string]any, error) {
	return s.searchByLocation(ctx, "cars", "car_id", location, limit)
}

// SearchExcursions returns excursions whose location contains the given substring.
func (s *TravelStore) SearchExcursions(ctx context.Context, location string, limit int) ([]map[string]any, error) {
	return s.searchByLocation(ctx, "excursions", "excursion_id", location, limit)
}

func (s *TravelStore) searchByLocation(ctx context.Context, table, idColumn, location string, limit int) ([]map[string]any, error) {
	query := `SELECT * FROM ` + table + ` WHERE 1=1`
	var args []any
	if location != "" {
		query += ` AND location LIKE ?`
		args = append(args, "%"+location+"%")
	}
	query += ` ORDER BY ` + idColumn + ` LIMIT ?`
	args = append(args, normalizeLimit(limit))
	return s.queryRows(ctx, query, args...)
}

// queryRows runs a query and scans every row into a column-keyed map.
func (s *TravelStore) queryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
