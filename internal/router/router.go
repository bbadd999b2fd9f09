// Package router classifies a user utterance into tool invocations using
// a priority-ordered keyword rule table.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/tools"
)

// DefaultLocation is assumed when an utterance names no known airport or
// city. It is present in every decision, relevant or not; callers must
// tolerate that.
const DefaultLocation = "Zurich"

// flightSearchLimit bounds routed flight searches to keep prompts small.
const flightSearchLimit = 5

// Logical result keys in a RoutingDecision.
const (
	KeyFlights    = "flights"
	KeyHotels     = "hotels"
	KeyCars       = "cars"
	KeyPolicy     = "policy"
	KeyExcursions = "excursions"
	KeyWebSearch  = "web_search"
	KeyUserInfo   = "user_info"
	KeyError      = "error"
)

// knownAirports are matched as substrings against the lower-cased
// utterance, before city names.
var knownAirports = []string{"zur", "jfk", "lhr", "cdg", "fra", "zrh", "nyc", "lon", "par"}

// knownCities override an airport match so "flights from Zurich" carries
// the city name rather than a partial code.
var knownCities = []string{"zurich", "new york", "london", "paris", "frankfurt"}

// rule is one entry of the intent table: if any keyword occurs in the
// utterance, the built invocation fires under the given result key.
type rule struct {
	key      string
	keywords []string
	build    func(location, query string) domain.ToolInvocation
}

// intentRules is evaluated in order; the first matching rule wins and at
// most one domain tool fires per utterance, even for multi-domain
// utterances. A multi-intent extension needs an explicit tie-break rule
// first.
var intentRules = []rule{
	{
		key:      KeyFlights,
		keywords: []string{"flight", "fly", "departure", "arrival"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolSearchFlights, Args: map[string]any{
				"departure_airport": location,
				"limit":             flightSearchLimit,
			}}
		},
	},
	{
		key:      KeyHotels,
		keywords: []string{"hotel", "stay", "accommodation", "room"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolSearchHotels, Args: map[string]any{"location": location}}
		},
	},
	{
		key:      KeyCars,
		keywords: []string{"car", "rental", "vehicle", "drive"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolSearchCars, Args: map[string]any{"location": location}}
		},
	},
	{
		key:      KeyPolicy,
		keywords: []string{"policy", "rule", "cancellation", "refund", "baggage"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolLookupPolicy, Args: map[string]any{"query": query}}
		},
	},
	{
		key:      KeyExcursions,
		keywords: []string{"excursion", "tour", "activity", "sightseeing"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolSearchExcursions, Args: map[string]any{"location": location}}
		},
	},
	{
		key:      KeyWebSearch,
		keywords: []string{"delay", "status", "live", "current", "real-time"},
		build: func(location, query string) domain.ToolInvocation {
			return domain.ToolInvocation{Name: domain.ToolSearchWeb, Args: map[string]any{"query": query}}
		},
	},
}

// Router maps an utterance to a RoutingDecision.
type Router struct {
	registry *tools.Registry
}

// New creates a Router over the given tool registry.
func New(registry *tools.Registry) *Router {
	return &Router{registry: registry}
}

// ExtractLocation scans an utterance for known airport codes, then known
// city names; a city match overrides an airport match so full city names
// win over embedded code fragments. Falls back to DefaultLocation.
func ExtractLocation(utterance string) string {
	lower := strings.ToLower(utterance)
	location := ""
	for _, code := range knownAirports {
		if strings.Contains(lower, code) {
			location = strings.ToUpper(code)
			break
		}
	}
	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			location = titleCase(city)
			break
		}
	}
	if location == "" {
		return DefaultLocation
	}
	return location
}

// Route classifies one utterance. Tool failures during routing are caught
// into a single "error" entry; the turn always continues. When the
// session carries a passenger id, a user-info lookup is appended
// independently of keyword matching.
func (r *Router) Route(ctx context.Context, utterance, passengerID string) domain.RoutingDecision {
	decision := domain.RoutingDecision{
		Location: ExtractLocation(utterance),
		Results:  map[string]domain.ToolResult{},
	}

	lower := strings.ToLower(utterance)
	for _, rule := range intentRules {
		if !matchesAny(lower, rule.keywords) {
			continue
		}
		log.Printf("Routing to %s", rule.key)
		inv := rule.build(decision.Location, utterance)
		result, err := r.registry.Execute(ctx, inv, passengerID)
		if err != nil {
			log.Printf("ERROR: tool execution error: %v", err)
			decision.Results[KeyError] = domain.NewFailure(fmt.Sprintf("Tool error: %v", err))
		} else {
			decision.Results[rule.key] = result
		}
		break
	}

	if passengerID != "" {
		result, err := r.registry.Execute(ctx, domain.ToolInvocation{
			Name: domain.ToolFetchUserInfo,
			Args: map[string]any{"passenger_id": passengerID},
		}, passengerID)
		if err != nil {
			log.Printf("ERROR: user info lookup error: %v", err)
			decision.Results[KeyError] = domain.NewFailure(fmt.Sprintf("Tool error: %v", err))
		} else {
			decision.Results[KeyUserInfo] = result
		}
	}

	return decision
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
