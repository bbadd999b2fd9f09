// Package ws provides the WebSocket chat endpoint.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/alpineair/concierge/internal/conversation"
	"github.com/alpineair/concierge/internal/domain"
)

// turnTimeout bounds one websocket-initiated turn end to end.
const turnTimeout = 120 * time.Second

// Message types on the socket.
const (
	TypeHello    = "hello"
	TypeHelloAck = "hello_ack"
	TypeChat     = "chat"
	TypeReply    = "reply"
	TypeError    = "error"
)

// Envelope is the common frame shape in both directions.
type Envelope struct {
	Type        string           `json:"type"`
	SessionID   string           `json:"session_id,omitempty"`
	PassengerID string           `json:"passenger_id,omitempty"`
	Text        string           `json:"text,omitempty"`
	Message     string           `json:"message,omitempty"`
	Messages    []domain.Message `json:"messages,omitempty"`
}

// Server handles WebSocket chat connections. Each connection binds to
// one session via a hello handshake and then exchanges chat/reply frames,
// one turn at a time.
type Server struct {
	manager  *conversation.Manager
	primary  conversation.Responder
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket chat server.
func NewServer(manager *conversation.Manager, primary conversation.Responder) *Server {
	return &Server{
		manager: manager,
		primary: primary,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and runs its read loop.
// GET /ws
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}
	go s.readPump(ws)
	return nil
}

type connState struct {
	mu          sync.Mutex
	sessionID   string
	passengerID string
}

func (s *Server) readPump(ws *websocket.Conn) {
	defer ws.Close()
	state := &connState{}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(ws, Envelope{Type: TypeError, Message: "invalid JSON message"})
			continue
		}

		switch msg.Type {
		case TypeHello:
			s.handleHello(ws, state, msg)
		case TypeChat:
			s.handleChat(ws, state, msg)
		default:
			s.send(ws, Envelope{Type: TypeError, Message: "unknown message type: " + msg.Type})
		}
	}
}

func (s *Server) handleHello(ws *websocket.Conn, state *connState, msg Envelope) {
	state.mu.Lock()
	defer state.mu.Unlock()

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = "sess_" + uuid.New().String()[:8]
	}
	state.sessionID = sessionID
	state.passengerID = msg.PassengerID

	s.send(ws, Envelope{Type: TypeHelloAck, SessionID: sessionID})
	log.Printf("Hello handshake completed for session: %s", sessionID)
}

func (s *Server) handleChat(ws *websocket.Conn, state *connState, msg Envelope) {
	state.mu.Lock()
	sessionID := state.sessionID
	passengerID := state.passengerID
	state.mu.Unlock()

	if sessionID == "" {
		s.send(ws, Envelope{Type: TypeError, Message: "must send hello first"})
		return
	}
	if msg.Text == "" {
		s.send(ws, Envelope{Type: TypeError, SessionID: sessionID, Message: "text is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	cfg := conversation.SessionConfig{PassengerID: passengerID}
	messages, err := s.manager.ProcessTurn(ctx, sessionID, cfg, msg.Text, s.primary)
	if err != nil {
		log.Printf("ERROR: websocket turn failed: %v", err)
		s.send(ws, Envelope{Type: TypeError, SessionID: sessionID, Message: err.Error()})
		return
	}

	reply := ""
	if len(messages) > 0 {
		reply = messages[len(messages)-1].Content
	}
	s.send(ws, Envelope{Type: TypeReply, SessionID: sessionID, Text: reply, Messages: messages})
}

func (s *Server) send(ws *websocket.Conn, msg Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal websocket message: %v", err)
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Failed to write message: %v", err)
	}
}
