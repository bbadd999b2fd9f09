// Package domain defines the core domain models for the concierge assistant.
package domain

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// MaxHistory is the maximum number of messages retained per conversation.
// When a turn pushes the history past this limit, the oldest messages are
// dropped from the front; order is never changed.
const MaxHistory = 10

// Conversation holds the per-session state: the ordered message log, the
// authenticated passenger (empty means unauthenticated) and an optional
// profile snapshot. Conversations live in memory only.
type Conversation struct {
	SessionID   string    `json:"session_id"`
	PassengerID string    `json:"passenger_id,omitempty"`
	UserInfo    string    `json:"user_info,omitempty"`
	Messages    []Message `json:"messages"`
}

// ToolName enumerates the closed set of tools the assistant can invoke.
type ToolName string

const (
	ToolSearchFlights    ToolName = "search_flights"
	ToolSearchHotels     ToolName = "search_hotels"
	ToolSearchCars       ToolName = "search_cars"
	ToolSearchExcursions ToolName = "search_excursions"
	ToolBookHotel        ToolName = "book_hotel"
	ToolBookCar          ToolName = "book_car"
	ToolBookExcursion    ToolName = "book_excursion"
	ToolUpdateTicket     ToolName = "update_ticket_to_new_flight"
	ToolLookupPolicy     ToolName = "lookup_policy"
	ToolSearchWeb        ToolName = "search_web"
	ToolFetchUserInfo    ToolName = "fetch_user_info"
)

// IsBooking reports whether the tool mutates a reservation and therefore
// requires a non-empty passenger id before it may run.
func (t ToolName) IsBooking() bool {
	switch t {
	case ToolBookHotel, ToolBookCar, ToolBookExcursion, ToolUpdateTicket:
		return true
	}
	return false
}

// ToolInvocation is a single tool call with its arguments.
type ToolInvocation struct {
	Name ToolName       `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResultKind tags the variant carried by a ToolResult.
type ToolResultKind string

const (
	ResultRows         ToolResultKind = "rows"
	ResultConfirmation ToolResultKind = "confirmation"
	ResultFailure      ToolResultKind = "failure"
)

// ToolResult is the single return channel for every tool. Search tools
// yield Rows; booking and text-style tools (policy, web search, user
// info) yield a Confirmation; empty results and store errors are both
// folded into a Failure message so callers always have something
// displayable.
type ToolResult struct {
	Kind         ToolResultKind   `json:"kind"`
	Rows         []map[string]any `json:"rows,omitempty"`
	Confirmation string           `json:"confirmation,omitempty"`
	Failure      string           `json:"failure,omitempty"`
}

// NewRows wraps a row set in a ToolResult.
func NewRows(rows []map[string]any) ToolResult {
	return ToolResult{Kind: ResultRows, Rows: rows}
}

// NewConfirmation wraps a booking acknowledgement in a ToolResult.
func NewConfirmation(text string) ToolResult {
	return ToolResult{Kind: ResultConfirmation, Confirmation: text}
}

// NewFailure wraps a degraded (no-result or error) message in a ToolResult.
func NewFailure(reason string) ToolResult {
	return ToolResult{Kind: ResultFailure, Failure: reason}
}

// Text renders the result the way it is fed into a generation prompt:
// rows as indented JSON, everything else as plain text.
func (r ToolResult) Text() string {
	switch r.Kind {
	case ResultRows:
		b, err := json.MarshalIndent(r.Rows, "", "  ")
		if err != nil {
			return "unserializable tool result"
		}
		return string(b)
	case ResultConfirmation:
		return r.Confirmation
	default:
		return r.Failure
	}
}

// RoutingDecision is the outcome of classifying one user utterance. It is
// derived fresh per turn and never stored. Results are keyed by logical
// result name ("flights", "hotels", "cars", "policy", "excursions",
// "web_search", "user_info" or "error").
type RoutingDecision struct {
	Location string                `json:"location"`
	Results  map[string]ToolResult `json:"results"`
}
