// Package agent implements the response orchestrators: the primary
// assistant and the domain specialists.
package agent

import (
	"context"

	"github.com/alpineair/concierge/internal/llm"
)

// Completer is the plain text-completion contract of a generation
// backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// ToolSelector is the structured function-calling contract of a
// generation backend: it picks at most one tool for a query.
type ToolSelector interface {
	SelectTool(ctx context.Context, systemPrompt, userQuery string, tools []llm.Tool) (*llm.ToolCall, error)
}

// Apology is the fixed reply substituted when every generation path
// failed. The assistant never produces an empty message.
const Apology = "I apologize, but I'm having trouble generating a response right now. Please try again in a moment."

// GenOptions carries the fixed generation parameters. They are
// configuration, not per-call user input.
type GenOptions struct {
	Temperature float64
	MaxTokens   int
}
