package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpineair/concierge/internal/domain"
	"github.com/alpineair/concierge/internal/llm"
	"github.com/alpineair/concierge/internal/policy"
	"github.com/alpineair/concierge/internal/router"
	"github.com/alpineair/concierge/internal/store"
	"github.com/alpineair/concierge/internal/tools"
)

// fakeCompleter replays scripted responses in order and records every
// prompt it received. An empty script answers "" with no error.
type fakeCompleter struct {
	script  []completion
	prompts []string
}

type completion struct {
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.script) == 0 {
		return "", nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.answer, next.err
}

type fakeSelector struct {
	call *llm.ToolCall
	err  error
}

func (f *fakeSelector) SelectTool(context.Context, string, string, []llm.Tool) (*llm.ToolCall, error) {
	return f.call, f.err
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	st, err := store.NewTravelStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	return tools.NewRegistry(st, nil, nil, engine, 2)
}

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	return router.New(newTestRegistry(t))
}

func conv(passengerID string, contents ...string) *domain.Conversation {
	c := &domain.Conversation{SessionID: "sess_test", PassengerID: passengerID}
	for i, content := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		c.Messages = append(c.Messages, domain.Message{Role: role, Content: content})
	}
	return c
}

func toolCall(name, arguments string) *llm.ToolCall {
	return &llm.ToolCall{
		ID:       "t1",
		Type:     "function",
		Function: llm.ToolCallFunction{Name: name, Arguments: arguments},
	}
}
