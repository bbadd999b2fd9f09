// Package http exposes the chat REST surface.
package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/alpineair/concierge/internal/conversation"
	"github.com/alpineair/concierge/internal/domain"
)

// Handler serves the chat API.
type Handler struct {
	manager            *conversation.Manager
	primary            conversation.Responder
	specialists        map[string]conversation.Responder
	defaultPassengerID string
}

// NewHandler creates the HTTP handler. specialists maps the optional
// "agent" request field ("flight", "hotel", "car", ...) to its pipeline;
// an empty or unknown value falls back to the primary orchestrator.
// defaultPassengerID, when set, stands in for requests that carry no
// passenger id.
func NewHandler(manager *conversation.Manager, primary conversation.Responder, specialists map[string]conversation.Responder, defaultPassengerID string) *Handler {
	return &Handler{
		manager:            manager,
		primary:            primary,
		specialists:        specialists,
		defaultPassengerID: defaultPassengerID,
	}
}

// RegisterRoutes registers all routes on the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat", h.Chat)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.DELETE("/v1/sessions/:session_id", h.ClearSession)
	e.GET("/health", h.Health)
}

// ChatRequest is one user turn.
type ChatRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	PassengerID string `json:"passenger_id,omitempty"`
	UserInfo    string `json:"user_info,omitempty"`
	Agent       string `json:"agent,omitempty"`
	Message     string `json:"message"`
}

// ChatResponse is the updated conversation after one turn.
type ChatResponse struct {
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Messages  []domain.Message `json:"messages"`
}

// Chat processes one turn.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "sess_" + uuid.New().String()[:8]
	}

	responder := h.primary
	if req.Agent != "" {
		if sp, ok := h.specialists[req.Agent]; ok {
			responder = sp
		}
	}

	passengerID := req.PassengerID
	if passengerID == "" {
		passengerID = h.defaultPassengerID
	}

	cfg := conversation.SessionConfig{PassengerID: passengerID, UserInfo: req.UserInfo}
	messages, err := h.manager.ProcessTurn(c.Request().Context(), sessionID, cfg, req.Message, responder)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyState) || domain.IsValidation(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	reply := ""
	if len(messages) > 0 {
		reply = messages[len(messages)-1].Content
	}
	return c.JSON(http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply, Messages: messages})
}

// GetSessionMessages returns the retained history for a session.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	messages := h.manager.History(sessionID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// ClearSession drops a session's history.
// DELETE /v1/sessions/:session_id
func (h *Handler) ClearSession(c echo.Context) error {
	h.manager.Reset(c.Param("session_id"))
	return c.NoContent(http.StatusNoContent)
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
