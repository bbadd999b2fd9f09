package agent

import (
	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/llm"
	"github.com/alpineair/concierge/internal/tools"
)

// specialist generation uses a smaller budget than the primary assistant.
const specialistMaxTokens = 400

func schema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// NewFlightSpecialist builds the flight expert: search, ticket update and
// live status lookups.
func NewFlightSpecialist(selector ToolSelector, generator Completer, registry *tools.Registry, opts GenOptions) *Specialist {
	opts.MaxTokens = specialistMaxTokens
	return &Specialist{
		domainLabel:  "flight",
		systemPrompt: "You are a flight booking expert. Analyze the user's query and call the appropriate tools to search flights, update tickets, or check live status.",
		apology:      "I'm having trouble accessing flight information right now. Please try again.",
		toolSchemas: []llm.Tool{
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchFlights),
				Description: "Search flights from database. Returns available flights.",
				Parameters: schema(map[string]any{
					"departure_airport": map[string]any{"type": "string", "description": "Departure airport code (e.g., ZRH, JFK)"},
					"arrival_airport":   map[string]any{"type": "string", "description": "Arrival airport code (optional)"},
					"limit":             map[string]any{"type": "integer", "default": 5, "description": "Maximum number of results"},
				}, []string{"departure_airport"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolUpdateTicket),
				Description: "Update an existing ticket to a new flight.",
				Parameters: schema(map[string]any{
					"ticket_no":     map[string]any{"type": "string", "description": "Ticket number"},
					"new_flight_id": map[string]any{"type": "integer", "description": "New flight ID"},
					"passenger_id":  map[string]any{"type": "string", "description": "Passenger ID"},
				}, []string{"ticket_no", "new_flight_id", "passenger_id"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchWeb),
				Description: "Search web for live flight delays, status, or current information.",
				Parameters: schema(map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query"},
				}, []string{"query"}),
			}},
		},
		allowed: map[string]domain.ToolName{
			string(domain.ToolSearchFlights): domain.ToolSearchFlights,
			string(domain.ToolUpdateTicket):  domain.ToolUpdateTicket,
			string(domain.ToolSearchWeb):     domain.ToolSearchWeb,
		},
		selector:  selector,
		generator: generator,
		registry:  registry,
		opts:      opts,
	}
}

// NewHotelSpecialist builds the hotel expert: search and booking.
func NewHotelSpecialist(selector ToolSelector, generator Completer, registry *tools.Registry, opts GenOptions) *Specialist {
	opts.MaxTokens = specialistMaxTokens
	return &Specialist{
		domainLabel:  "hotel",
		systemPrompt: "You are a hotel booking expert. Analyze the user's query and call the appropriate tools to search hotels or book a stay.",
		apology:      "I'm having trouble accessing hotel information right now. Please try again.",
		toolSchemas: []llm.Tool{
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchHotels),
				Description: "Search hotels in a specific location.",
				Parameters: schema(map[string]any{
					"location": map[string]any{"type": "string", "description": "City or location"},
					"checkin":  map[string]any{"type": "string", "description": "Check-in date (optional)"},
					"checkout": map[string]any{"type": "string", "description": "Check-out date (optional)"},
					"limit":    map[string]any{"type": "integer", "default": 5},
				}, []string{"location"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolBookHotel),
				Description: "Book a hotel for a passenger.",
				Parameters: schema(map[string]any{
					"hotel_id":     map[string]any{"type": "integer", "description": "Hotel ID"},
					"passenger_id": map[string]any{"type": "string", "description": "Passenger ID"},
				}, []string{"hotel_id", "passenger_id"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchWeb),
				Description: "Search web for hotel reviews or availability.",
				Parameters: schema(map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query"},
				}, []string{"query"}),
			}},
		},
		allowed: map[string]domain.ToolName{
			string(domain.ToolSearchHotels): domain.ToolSearchHotels,
			string(domain.ToolBookHotel):    domain.ToolBookHotel,
			string(domain.ToolSearchWeb):    domain.ToolSearchWeb,
		},
		selector:  selector,
		generator: generator,
		registry:  registry,
		opts:      opts,
	}
}

// NewCarSpecialist builds the car rental expert: search and booking.
func NewCarSpecialist(selector ToolSelector, generator Completer, registry *tools.Registry, opts GenOptions) *Specialist {
	opts.MaxTokens = specialistMaxTokens
	return &Specialist{
		domainLabel:  "car rental",
		systemPrompt: "You are a car rental expert. Analyze the user's query and call the appropriate tools to search rental cars or book one.",
		apology:      "I'm having trouble accessing car rental information right now. Please try again.",
		toolSchemas: []llm.Tool{
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchCars),
				Description: "Search available rental cars in a location.",
				Parameters: schema(map[string]any{
					"location": map[string]any{"type": "string", "description": "City or location"},
					"dates":    map[string]any{"type": "string", "description": "Rental dates (optional)"},
					"limit":    map[string]any{"type": "integer", "default": 5},
				}, []string{"location"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolBookCar),
				Description: "Book a rental car for a passenger.",
				Parameters: schema(map[string]any{
					"car_id":       map[string]any{"type": "integer", "description": "Car ID"},
					"passenger_id": map[string]any{"type": "string", "description": "Passenger ID"},
				}, []string{"car_id", "passenger_id"}),
			}},
			{Type: "function", Function: llm.ToolFunction{
				Name:        string(domain.ToolSearchWeb),
				Description: "Search web for rental availability or reviews.",
				Parameters: schema(map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query"},
				}, []string{"query"}),
			}},
		},
		allowed: map[string]domain.ToolName{
			string(domain.ToolSearchCars): domain.ToolSearchCars,
			string(domain.ToolBookCar):    domain.ToolBookCar,
			string(domain.ToolSearchWeb):  domain.ToolSearchWeb,
		},
		selector:  selector,
		generator: generator,
		registry:  registry,
		opts:      opts,
	}
}
