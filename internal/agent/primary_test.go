package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpineair/concierge/internal/domain"
)

func TestPrimaryRespondEmptyConversation(t *testing.T) {
	p := NewPrimary(newTestRouter(t), &fakeCompleter{}, nil, GenOptions{}, false)

	_, err := p.Respond(context.Background(), conv(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyState))
}

func TestPrimaryRespondGroundsOnToolResults(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "We have three hotels in Zurich."}}}
	p := NewPrimary(newTestRouter(t), primary, nil, GenOptions{Temperature: 0.7, MaxTokens: 500}, false)

	answer, err := p.Respond(context.Background(), conv("", "what hotels do you have"))
	require.NoError(t, err)
	assert.Equal(t, "We have three hotels in Zurich.", answer)

	require.Len(t, primary.prompts, 1)
	prompt := primary.prompts[0]
	assert.Contains(t, prompt, "what hotels do you have")
	assert.Contains(t, prompt, "hotels")
	assert.Contains(t, prompt, "No user info available")
}

func TestPrimaryRespondIncludesHistory(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "ok"}}}
	p := NewPrimary(newTestRouter(t), primary, nil, GenOptions{}, false)

	_, err := p.Respond(context.Background(), conv("", "earlier question", "earlier answer", "what hotels do you have"))
	require.NoError(t, err)
	require.Len(t, primary.prompts, 1)
	assert.Contains(t, primary.prompts[0], "earlier question")
	assert.Contains(t, primary.prompts[0], "earlier answer")
}

func TestPrimaryFallbackSubstitutes(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{err: errors.New("backend down")}}}
	refiner := &fakeCompleter{script: []completion{{answer: "fallback answer"}}}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, false)

	answer, err := p.Respond(context.Background(), conv("", "what hotels do you have"))
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", answer)
}

func TestPrimaryApologyWhenEverythingFails(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{err: errors.New("backend down")}}}
	refiner := &fakeCompleter{script: []completion{{err: errors.New("also down")}}}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, false)

	answer, err := p.Respond(context.Background(), conv("", "what hotels do you have"))
	require.NoError(t, err)
	assert.Equal(t, Apology, answer)
}

func TestPrimaryApologyWithoutRefiner(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{err: errors.New("backend down")}}}
	p := NewPrimary(newTestRouter(t), primary, nil, GenOptions{}, false)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, Apology, answer)
}

func TestPrimaryEmptyAnswerBecomesApology(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: ""}}}
	p := NewPrimary(newTestRouter(t), primary, nil, GenOptions{}, false)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, Apology, answer)
}

func TestPrimaryRefinementRewrites(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "rough draft"}}}
	refiner := &fakeCompleter{script: []completion{{answer: "polished answer"}}}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, true)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "polished answer", answer)

	require.Len(t, refiner.prompts, 1)
	assert.True(t, strings.HasPrefix(refiner.prompts[0], refineInstruction))
	assert.Contains(t, refiner.prompts[0], "rough draft")
}

func TestPrimaryRefinementKeepsOriginalOnFailure(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "rough draft"}}}
	refiner := &fakeCompleter{script: []completion{{err: errors.New("refiner down")}}}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, true)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "rough draft", answer)
}

func TestPrimaryRefinementRejectsPlaceholder(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "rough draft"}}}
	refiner := &fakeCompleter{script: []completion{{answer: "(no output)"}}}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, true)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "rough draft", answer)
}

func TestPrimaryCancellationPolicyTurn(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{answer: "Cancellations are allowed up to 24 hours before departure."}}}
	p := NewPrimary(newTestRouter(t), primary, nil, GenOptions{}, false)

	answer, err := p.Respond(context.Background(), conv("", "What's the cancellation policy?"))
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	// The registry here has no retriever, so the policy result carries
	// the fixed unavailable message into the prompt.
	require.Len(t, primary.prompts, 1)
	assert.Contains(t, primary.prompts[0], "policy")
	assert.Contains(t, primary.prompts[0], "unavailable")
}

func TestPrimaryRefinementSkipsApologies(t *testing.T) {
	primary := &fakeCompleter{script: []completion{{err: errors.New("backend down")}}}
	refiner := &fakeCompleter{}
	p := NewPrimary(newTestRouter(t), primary, refiner, GenOptions{}, true)

	answer, err := p.Respond(context.Background(), conv("", "hello"))
	require.NoError(t, err)
	assert.Equal(t, Apology, answer)
	// One fallback attempt, no refinement call on the apologetic answer.
	assert.Len(t, refiner.prompts, 1)
}
