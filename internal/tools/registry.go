// Package tools implements the domain tool layer: typed search, booking
// and lookup operations dispatched over the closed tool set.
package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/policy"
	"github.com/alpineair/concierge/internal/retrieval"
	"github.com/alpineair/concierge/internal/store"
	"github.com/alpineair/concierge/internal/websearch"
)

// WebSearchMaxResults caps live web-search hits fed into a prompt.
const WebSearchMaxResults = 3

// Registry wires every tool to its collaborators. All handles are
// constructed once at startup and passed in; there is no package-level
// state.
type Registry struct {
	store      *store.TravelStore
	retriever  *retrieval.Retriever
	web        *websearch.Client
	authEngine *policy.Engine
	policyTopK int
}

// NewRegistry creates the tool registry. retriever and web may be nil;
// both degrade to fixed messages.
func NewRegistry(st *store.TravelStore, retriever *retrieval.Retriever, web *websearch.Client, authEngine *policy.Engine, policyTopK int) *Registry {
	if policyTopK <= 0 {
		policyTopK = 2
	}
	return &Registry{
		store:      st,
		retriever:  retriever,
		web:        web,
		authEngine: authEngine,
		policyTopK: policyTopK,
	}
}

// Execute runs one tool invocation. Booking-class tools get the session
// passenger id injected when their own argument is empty, and fail with a
// ValidationError before any side effect when it is still missing.
// Search-style failures are folded into a displayable Failure result.
func (r *Registry) Execute(ctx context.Context, inv domain.ToolInvocation, passengerID string) (domain.ToolResult, error) {
	args := inv.Args
	if args == nil {
		args = map[string]any{}
	}
	if inv.Name.IsBooking() && stringArg(args, "passenger_id") == "" && passengerID != "" {
		args["passenger_id"] = passengerID
	}

	switch inv.Name {
	case domain.ToolSearchFlights:
		return r.searchFlights(ctx, args), nil
	case domain.ToolSearchHotels:
		return r.searchHotels(ctx, args), nil
	case domain.ToolSearchCars:
		return r.searchCars(ctx, args), nil
	case domain.ToolSearchExcursions:
		return r.searchExcursions(ctx, args), nil
	case domain.ToolBookHotel:
		return r.book(ctx, inv.Name, args, "hotel_id", "Hotel")
	case domain.ToolBookCar:
		return r.book(ctx, inv.Name, args, "car_id", "Car")
	case domain.ToolBookExcursion:
		return r.book(ctx, inv.Name, args, "excursion_id", "Excursion")
	case domain.ToolUpdateTicket:
		return r.updateTicket(ctx, args)
	case domain.ToolLookupPolicy:
		return domain.NewConfirmation(r.LookupPolicy(ctx, stringArg(args, "query"))), nil
	case domain.ToolSearchWeb:
		return domain.NewConfirmation(r.SearchWeb(ctx, stringArg(args, "query"))), nil
	case domain.ToolFetchUserInfo:
		return domain.NewConfirmation(FetchUserInfo(stringArg(args, "passenger_id"))), nil
	default:
		return domain.NewFailure(fmt.Sprintf("Unknown tool: %s", inv.Name)), nil
	}
}

func (r *Registry) searchFlights(ctx context.Context, args map[string]any) domain.ToolResult {
	departure := stringArg(args, "departure_airport")
	arrival := stringArg(args, "arrival_airport")
	rows, err := r.store.SearchFlights(ctx, departure, arrival, intArg(args, "limit"))
	if err != nil {
		log.Printf("ERROR: search_flights failed: %v", err)
		return domain.NewFailure(fmt.Sprintf("Database error: %v", err))
	}
	if len(rows) == 0 {
		return domain.NewFailure("No flights found for your criteria. Try broader search or different airports.")
	}
	return domain.NewRows(rows)
}

func (r *Registry) searchHotels(ctx context.Context, args map[string]any) domain.ToolResult {
	location := stringArg(args, "location")
	rows, err := r.store.SearchHotels(ctx, location, intArg(args, "limit"))
	if err != nil {
		log.Printf("ERROR: search_hotels failed: %v", err)
		return domain.NewFailure(fmt.Sprintf("Database error: %v", err))
	}
	if len(rows) == 0 {
		return domain.NewFailure(fmt.Sprintf("No hotels found in %s. Try a different location.", location))
	}
	return domain.NewRows(rows)
}

func (r *Registry) searchCars(ctx context.Context, args map[string]any) domain.ToolResult {
	location := stringArg(args, "location")
	rows, err := r.store.SearchCars(ctx, location, intArg(args, "limit"))
	if err != nil {
		log.Printf("ERROR: search_cars failed: %v", err)
		return domain.NewFailure(fmt.Sprintf("Database error: %v", err))
	}
	if len(rows) == 0 {
		return domain.NewFailure(fmt.Sprintf("No rental cars available in %s. Try a different location.", location))
	}
	return domain.NewRows(rows)
}

func (r *Registry) searchExcursions(ctx context.Context, args map[string]any) domain.ToolResult {
	location := stringArg(args, "location")
	rows, err := r.store.SearchExcursions(ctx, location, intArg(args, "limit"))
	if err != nil {
		log.Printf("ERROR: search_excursions failed: %v", err)
		return domain.NewFailure(fmt.Sprintf("Database error: %v", err))
	}
	if len(rows) == 0 {
		return domain.NewFailure(fmt.Sprintf("No excursions available in %s. Try a different location.", location))
	}
	return domain.NewRows(rows)
}

// book handles the simulated booking tools. No reservation is persisted;
// a production deployment replaces this with a transactional booking
// service.
func (r *Registry) book(ctx context.Context, tool domain.ToolName, args map[string]any, idKey, label string) (domain.ToolResult, error) {
	entityID := stringArg(args, idKey)
	passengerID := stringArg(args, "passenger_id")

	if err := r.authorize(ctx, tool, passengerID, args); err != nil {
		return domain.ToolResult{}, err
	}
	if entityID == "" {
		return domain.ToolResult{}, domain.NewValidationError(tool, fmt.Sprintf("%s is required", idKey))
	}

	log.Printf("%s %s booked for passenger %s", label, entityID, passengerID)
	return domain.NewConfirmation(fmt.Sprintf("%s %s successfully booked for passenger %s.", label, entityID, passengerID)), nil
}

func (r *Registry) updateTicket(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
	ticketNo := stringArg(args, "ticket_no")
	newFlightID := stringArg(args, "new_flight_id")
	passengerID := stringArg(args, "passenger_id")

	if err := r.authorize(ctx, domain.ToolUpdateTicket, passengerID, args); err != nil {
		return domain.ToolResult{}, err
	}
	if ticketNo == "" || newFlightID == "" {
		return domain.ToolResult{}, domain.NewValidationError(domain.ToolUpdateTicket, "ticket number and new flight ID are required")
	}

	log.Printf("Ticket %s updated to flight %s for passenger %s", ticketNo, newFlightID, passengerID)
	return domain.NewConfirmation(fmt.Sprintf("Ticket %s successfully updated to flight %s.", ticketNo, newFlightID)), nil
}

// authorize runs the booking authorization gate. The rego policy and the
// in-code check agree; the policy engine is authoritative when present.
func (r *Registry) authorize(ctx context.Context, tool domain.ToolName, passengerID string, args map[string]any) error {
	if r.authEngine != nil {
		input := map[string]any{
			"tool_name":    string(tool),
			"booking":      tool.IsBooking(),
			"passenger_id": passengerID,
			"args":         args,
		}
		decision, err := r.authEngine.Evaluate(ctx, input)
		if err != nil {
			log.Printf("ERROR: policy evaluation failed: %v", err)
			return domain.NewValidationError(tool, "authorization check failed")
		}
		if decision == policy.DecisionBlock {
			return domain.NewValidationError(tool, "no passenger ID provided; authorization required")
		}
		return nil
	}
	if passengerID == "" {
		return domain.NewValidationError(tool, "no passenger ID provided; authorization required")
	}
	return nil
}

// LookupPolicy answers a policy question from the FAQ corpus.
func (r *Registry) LookupPolicy(ctx context.Context, query string) string {
	return r.retriever.Lookup(ctx, query, r.policyTopK)
}

// SearchWeb runs a live web search, degrading to a fixed mock string when
// no backend is configured and to an apology on API failure.
func (r *Registry) SearchWeb(ctx context.Context, query string) string {
	if r.web == nil {
		return websearch.MockResponse
	}
	results, err := r.web.Search(ctx, query, WebSearchMaxResults)
	if err != nil {
		log.Printf("ERROR: web search failed: %v", err)
		return fmt.Sprintf("Web search temporarily unavailable. Error: %v", err)
	}
	return websearch.Format(results)
}

// FetchUserInfo returns the profile snapshot for a passenger. The backing
// profile service is stubbed with a fixed active booking.
func FetchUserInfo(passengerID string) string {
	if passengerID == "" {
		return "No passenger information available."
	}
	return fmt.Sprintf("Passenger %s has active booking: Flight LX123 (ZRH→JFK).", passengerID)
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
