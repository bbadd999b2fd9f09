package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/router"
)

// refineInstruction is prepended to an answer for the optional rewrite
// pass. The refiner must not add facts.
const refineInstruction = "Improve clarity and professionalism without adding facts:\n\n"

// refinerFailureMarker: refiner placeholder outputs start with this and
// are rejected.
const refinerFailureMarker = "("

// Primary is the top-level assistant for one turn: route the utterance,
// aggregate tool results into a grounding prompt, generate with the
// primary backend, fall back to the refiner backend, optionally refine.
type Primary struct {
	router        *router.Router
	primary       Completer
	refiner       Completer // fallback and refinement backend, may be nil
	opts          GenOptions
	useRefinement bool
}

// NewPrimary constructs the primary orchestrator.
func NewPrimary(rt *router.Router, primary, refiner Completer, opts GenOptions, useRefinement bool) *Primary {
	return &Primary{
		router:        rt,
		primary:       primary,
		refiner:       refiner,
		opts:          opts,
		useRefinement: useRefinement,
	}
}

// Respond produces the assistant reply for the conversation's latest
// message. The conversation must contain at least one message; an empty
// conversation is a caller bug and fails the turn. All generation
// failures degrade to a fallback answer or the fixed apology.
func (p *Primary) Respond(ctx context.Context, conv *domain.Conversation) (string, error) {
	if len(conv.Messages) == 0 {
		return "", domain.ErrEmptyState
	}

	history := conv.Messages[:len(conv.Messages)-1]
	userQuery := conv.Messages[len(conv.Messages)-1].Content
	log.Printf("Processing query: %.100s", userQuery)

	decision := p.router.Route(ctx, userQuery, conv.PassengerID)

	prompt := buildGroundingPrompt(time.Now().UTC(), history, userQuery, decision, conv.UserInfo)

	answer, err := p.primary.Complete(ctx, prompt, p.opts.Temperature, p.opts.MaxTokens)
	if err != nil {
		log.Printf("ERROR: primary backend failed: %v", err)
		answer = p.fallback(ctx, prompt)
	}
	if answer == "" {
		answer = Apology
	}

	if p.useRefinement {
		answer = p.refine(ctx, answer)
	}
	return answer, nil
}

// fallback retries the same prompt against the refiner backend as a plain
// completion; if that fails too, the fixed apology stands in.
func (p *Primary) fallback(ctx context.Context, prompt string) string {
	if p.refiner == nil {
		return Apology
	}
	answer, err := p.refiner.Complete(ctx, prompt, p.opts.Temperature, p.opts.MaxTokens)
	if err != nil {
		log.Printf("ERROR: fallback backend failed: %v", err)
		return Apology
	}
	log.Printf("Fallback backend substituted the answer")
	return answer
}

// refine rewrites an answer for clarity. Apologetic answers are left
// alone, and any refinement-path failure keeps the unrefined answer.
func (p *Primary) refine(ctx context.Context, answer string) string {
	if p.refiner == nil || answer == "" || strings.Contains(strings.ToLower(answer), "apologize") {
		return answer
	}
	refined, err := p.refiner.Complete(ctx, refineInstruction+answer, p.opts.Temperature, p.opts.MaxTokens)
	if err != nil {
		log.Printf("WARN: refinement skipped: %v", err)
		return answer
	}
	if refined == "" || strings.HasPrefix(refined, refinerFailureMarker) {
		return answer
	}
	return refined
}

// buildGroundingPrompt assembles the generation prompt: timestamp, the
// last 6 history messages, the query, the routed tool results and the
// user profile, with explicit grounding instructions.
func buildGroundingPrompt(now time.Time, history []domain.Message, userQuery string, decision domain.RoutingDecision, userInfo string) string {
	recent := history
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	historyJSON, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		historyJSON = []byte("[]")
	}

	results := make(map[string]any, len(decision.Results))
	for key, res := range decision.Results {
		if res.Kind == domain.ResultRows {
			results[key] = res.Rows
		} else {
			results[key] = res.Text()
		}
	}
	resultsJSON, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		resultsJSON = []byte("{}")
	}

	if userInfo == "" {
		userInfo = "No user info available"
	}

	return fmt.Sprintf(`You are a helpful airline virtual assistant.

Current UTC time: %s

Recent conversation history:
%s

User's current question:
%s

Available tool results (trusted data from systems):
%s

User information:
%s

INSTRUCTIONS:
- Base your answer ONLY on the tool results provided above
- Do NOT invent flights, prices, hotels, or policies
- If tool results are empty or show "No results found", inform the user politely
- Be concise, helpful, and professional
- Use natural conversational language
- If the user asks about bookings, remind them you can help with that
- Format prices in CHF (Swiss Francs) when mentioned

Provide a helpful, accurate response:`,
		now.Format(time.RFC3339), historyJSON, userQuery, resultsJSON, userInfo)
}
