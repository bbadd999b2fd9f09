package store

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *TravelStore {
	t.Helper()
	s, err := NewTravelStore(":memory:")
	if err != nil {
		t.Fatalf("NewTravelStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchFlightsByDeparture(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.SearchFlights(context.Background(), "zrh", "", 0)
	if err != nil {
		t.Fatalf("SearchFlights failed: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected seeded ZRH departures, got none")
	}
	for _, row := range rows {
		if row["departure_airport"] != "ZRH" {
			t.Fatalf("unexpected departure: %v", row["departure_airport"])
		}
	}
}

func TestSearchFlightsBothFilters(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.SearchFlights(context.Background(), "ZRH", "JFK", 0)
	if err != nil {
		t.Fatalf("SearchFlights failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ZRH->JFK flights, got %d", len(rows))
	}
	// Insertion order: LX123 seeded before LX18.
	if rows[0]["flight_no"] != "LX123" || rows[1]["flight_no"] != "LX18" {
		t.Fatalf("unexpected order: %v, %v", rows[0]["flight_no"], rows[1]["flight_no"])
	}
}

func TestSearchFlightsNoMatch(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.SearchFlights(context.Background(), "XXX", "", 0)
	if err != nil {
		t.Fatalf("SearchFlights failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestSearchFlightsLimit(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.SearchFlights(context.Background(), "", "", 3)
	if err != nil {
		t.Fatalf("SearchFlights failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestSearchHotelsSubstring(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.SearchHotels(context.Background(), "Zur", 0)
	if err != nil {
		t.Fatalf("SearchHotels failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 Zurich hotels, got %d", len(rows))
	}
}

func TestSearchCarsAndExcursions(t *testing.T) {
	s := newTestStore(t)

	cars, err := s.SearchCars(context.Background(), "Zurich", 0)
	if err != nil {
		t.Fatalf("SearchCars failed: %v", err)
	}
	if len(cars) != 3 {
		t.Fatalf("expected 3 Zurich cars, got %d", len(cars))
	}

	excursions, err := s.SearchExcursions(context.Background(), "Paris", 0)
	if err != nil {
		t.Fatalf("SearchExcursions failed: %v", err)
	}
	if len(excursions) != 1 {
		t.Fatalf("expected 1 Paris excursion, got %d", len(excursions))
	}
}

func TestSeedIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.seed(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	rows, err := s.SearchFlights(context.Background(), "", "", 100)
	if err != nil {
		t.Fatalf("SearchFlights failed: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 flights after reseed, got %d", len(rows))
	}
}
