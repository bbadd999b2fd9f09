package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/llm"
	"github.com/alpineair/concierge/internal/tools"
)

// noToolResult stands in for the tool result when the selection backend
// picked no tool.
const noToolResult = "No specific tool needed. Using general knowledge."

// rawResultLimit truncates the raw tool result substituted when the
// generation stage fails.
const rawResultLimit = 200

// Specialist is a domain-scoped three-stage pipeline: structured tool
// selection, tool execution, natural-language generation. It is usable
// independently of the primary orchestrator.
type Specialist struct {
	domainLabel  string
	systemPrompt string
	apology      string
	toolSchemas  []llm.Tool
	allowed      map[string]domain.ToolName
	selector     ToolSelector
	generator    Completer
	registry     *tools.Registry
	opts         GenOptions
}

// Respond runs the pipeline for the conversation's latest message.
// Failures degrade stage by stage: a selection-backend failure
// short-circuits with the domain apology, a tool failure feeds its error
// text into generation, and a generation failure substitutes the
// truncated raw tool result. The reply is never empty.
func (s *Specialist) Respond(ctx context.Context, conv *domain.Conversation) (string, error) {
	if len(conv.Messages) == 0 {
		return "", domain.ErrEmptyState
	}
	history := conv.Messages[:len(conv.Messages)-1]
	userQuery := conv.Messages[len(conv.Messages)-1].Content
	log.Printf("%s specialist processing: %.100s", s.domainLabel, userQuery)

	// Stage 1: structured tool selection.
	call, err := s.selector.SelectTool(ctx, s.systemPrompt, userQuery, s.toolSchemas)
	if err != nil {
		log.Printf("ERROR: %s tool selection failed: %v", s.domainLabel, err)
		return s.apology, nil
	}

	// Stage 2: execution.
	toolResult := noToolResult
	if call != nil {
		toolResult = s.executeCall(ctx, call, conv.PassengerID)
	}

	// Stage 3: generation grounded on the tool result.
	prompt := s.buildPrompt(history, userQuery, toolResult)
	answer, err := s.generator.Complete(ctx, prompt, s.opts.Temperature, s.opts.MaxTokens)
	if err != nil || answer == "" {
		log.Printf("ERROR: %s generation failed: %v", s.domainLabel, err)
		raw := toolResult
		if len(raw) > rawResultLimit {
			raw = raw[:rawResultLimit]
		}
		return fmt.Sprintf("I found the information but had trouble formatting it. Raw data: %s", raw), nil
	}
	return answer, nil
}

// executeCall maps the selected function onto the closed tool set and
// runs it. Every failure becomes displayable text for stage 3.
func (s *Specialist) executeCall(ctx context.Context, call *llm.ToolCall, passengerID string) string {
	name, ok := s.allowed[call.Function.Name]
	if !ok {
		log.Printf("ERROR: %s specialist got unknown tool %q", s.domainLabel, call.Function.Name)
		return "Tool not found"
	}

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.Printf("ERROR: invalid tool arguments: %v", err)
			return fmt.Sprintf("Error executing %s: invalid arguments", call.Function.Name)
		}
	}

	log.Printf("Executing tool: %s", name)
	result, err := s.registry.Execute(ctx, domain.ToolInvocation{Name: name, Args: args}, passengerID)
	if err != nil {
		log.Printf("ERROR: tool execution failed: %v", err)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	return result.Text()
}

func (s *Specialist) buildPrompt(history []domain.Message, userQuery, toolResult string) string {
	recent := history
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	lines := make([]string, len(recent))
	for i, m := range recent {
		lines[i] = fmt.Sprintf("%s: %s", m.Role, m.Content)
	}

	return fmt.Sprintf(`You are an airline %s expert assistant.

Conversation history:
%s

User's question: %s

Tool result (trusted data):
%s

Instructions:
- Provide a natural, helpful response based on the tool result
- Be conversational and professional
- If results are available, present them clearly with key details
- If no results, suggest alternatives or ask for more details
- Keep response concise but complete

Your response:`, s.domainLabel, strings.Join(lines, "\n"), userQuery, toolResult)
}

// Generic wraps the primary orchestrator with a domain tag on the
// utterance, for domains without a dedicated pipeline.
type Generic struct {
	domainLabel string
	primary     *Primary
}

// NewGeneric creates a tagged pass-through specialist.
func NewGeneric(domainLabel string, primary *Primary) *Generic {
	return &Generic{domainLabel: domainLabel, primary: primary}
}

// Respond tags the latest message with the domain label and delegates to
// the primary orchestrator.
func (g *Generic) Respond(ctx context.Context, conv *domain.Conversation) (string, error) {
	if len(conv.Messages) == 0 {
		return "", domain.ErrEmptyState
	}
	log.Printf("%s generic specialist activated", g.domainLabel)
	tagged := *conv
	tagged.Messages = append(append([]domain.Message{}, conv.Messages[:len(conv.Messages)-1]...), domain.Message{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf("[%s] %s", g.domainLabel, conv.Messages[len(conv.Messages)-1].Content),
	})
	return g.primary.Respond(ctx, &tagged)
}
