package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestEvaluateAllowsSearch(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), map[string]any{
		"tool_name":    "search_flights",
		"booking":      false,
		"passenger_id": "",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionAllow {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestEvaluateBlocksBookingWithoutPassenger(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), map[string]any{
		"tool_name":    "book_hotel",
		"booking":      true,
		"passenger_id": "",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionBlock {
		t.Fatalf("expected block, got %q", decision)
	}
}

func TestEvaluateAllowsAuthorizedBooking(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), map[string]any{
		"tool_name":    "book_hotel",
		"booking":      true,
		"passenger_id": "3442 587242",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionAllow {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "package broken\n\ndecision :="); err == nil {
		t.Fatalf("expected error for malformed policy")
	}
}
