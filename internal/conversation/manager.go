// Package conversation maintains bounded per-session message history and
// drives one turn at a time through a responder.
package conversation

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/alpineair/concierge/internal/domain"
)

// Responder produces the assistant reply for a conversation whose last
// message is the pending user turn.
type Responder interface {
	Respond(ctx context.Context, conv *domain.Conversation) (string, error)
}

// SessionConfig is the lightweight per-turn session context.
type SessionConfig struct {
	PassengerID string
	UserInfo    string
}

// turnApology is appended when a turn fails outside the recoverable
// generation paths, so the user still sees an answer.
const turnApology = "I apologize, but I encountered an error processing your request. Please try again."

type session struct {
	mu   sync.Mutex
	conv *domain.Conversation
}

// Manager owns all live conversations. Turns within one session are
// serialized; sessions are independent. Nothing is persisted across
// process restarts.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*session)}
}

func (m *Manager) get(sessionID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{conv: &domain.Conversation{SessionID: sessionID}}
		m.sessions[sessionID] = s
	}
	return s
}

// ProcessTurn appends the user message, obtains the assistant reply and
// appends it, then trims the history to the retention window. The
// returned slice is a copy of the updated history. Exactly one user and
// one assistant message are added per turn; prior messages are never
// edited or reordered.
func (m *Manager) ProcessTurn(ctx context.Context, sessionID string, cfg SessionConfig, userText string, responder Responder) ([]domain.Message, error) {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.conv
	conv.PassengerID = cfg.PassengerID
	if cfg.UserInfo != "" {
		conv.UserInfo = cfg.UserInfo
	}
	conv.Messages = append(conv.Messages, domain.Message{Role: domain.RoleUser, Content: userText})

	answer, err := responder.Respond(ctx, conv)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyState) || domain.IsValidation(err) {
			// Contract violations surface; undo the provisional user append.
			conv.Messages = conv.Messages[:len(conv.Messages)-1]
			return nil, err
		}
		log.Printf("ERROR: turn failed: %v", err)
		answer = turnApology
	}
	if answer == "" {
		answer = turnApology
	}

	conv.Messages = append(conv.Messages, domain.Message{Role: domain.RoleAssistant, Content: answer})
	conv.Messages = Trim(conv.Messages, domain.MaxHistory)

	out := make([]domain.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out, nil
}

// History returns a copy of the session's current messages.
func (m *Manager) History(sessionID string) []domain.Message {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.conv.Messages))
	copy(out, s.conv.Messages)
	return out
}

// Reset drops a session's conversation entirely.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Trim drops messages from the front until at most max remain. Order of
// the remainder is preserved.
func Trim(messages []domain.Message, max int) []domain.Message {
	if len(messages) <= max {
		return messages
	}
	log.Printf("Trimming history: %d -> %d messages", len(messages), max)
	return messages[len(messages)-max:]
}
