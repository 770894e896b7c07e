// Package ws exposes the shopping assistant over a WebSocket so
// clients can hold a live conversation instead of polling the REST
// endpoint.
package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/phonewise/phonewise-be/internal/api/middleware"
	"github.com/phonewise/phonewise-be/internal/response"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ChatEngine processes one user message into an assistant reply.
type ChatEngine interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (response.Response, error)
}

// ChatHandler handles WebSocket chat connections
type ChatHandler struct {
	engine         ChatEngine
	messagesPerMin int
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine ChatEngine, messagesPerMin int) *ChatHandler {
	if messagesPerMin <= 0 {
		messagesPerMin = 30
	}
	return &ChatHandler{
		engine:         engine,
		messagesPerMin: messagesPerMin,
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Content string `json:"content"`
}

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type    string      `json:"type"` // "session", "message", "products", "error", "done"
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HandleChat upgrades the connection and runs the read loop. The
// session ID comes from the session_id query parameter; a new one is
// issued when the client connects without it.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("WebSocket connected: session=%s", sessionID)

	// Tell the client which session its history lives under
	if err := conn.WriteJSON(OutgoingMessage{Type: "session", Content: sessionID}); err != nil {
		return
	}

	limiter := middleware.NewWebSocketLimiter(h.messagesPerMin)

	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if msg.Content == "" {
			continue
		}

		if !limiter.Allow() {
			h.sendError(conn, "Too many messages, please slow down")
			continue
		}

		if err := h.processMessage(c.Request.Context(), conn, sessionID, msg.Content); err != nil {
			log.Printf("Error processing message: %v", err)
			h.sendError(conn, "Failed to process message")
		}
	}
}

// processMessage runs one message through the engine and replies
func (h *ChatHandler) processMessage(ctx context.Context, conn *websocket.Conn, sessionID, content string) error {
	resp, err := h.engine.ProcessMessage(ctx, sessionID, content)
	if err != nil {
		return err
	}

	if err := conn.WriteJSON(OutgoingMessage{Type: "message", Content: resp.Response}); err != nil {
		return err
	}

	if len(resp.Products) > 0 {
		if err := conn.WriteJSON(OutgoingMessage{Type: "products", Data: resp.Products}); err != nil {
			return err
		}
	}

	return conn.WriteJSON(OutgoingMessage{
		Type: "done",
		Data: gin.H{"intent": resp.Intent, "suggestions": resp.Suggestions},
	})
}

// sendError sends an error message to the client
func (h *ChatHandler) sendError(conn *websocket.Conn, message string) error {
	return conn.WriteJSON(OutgoingMessage{
		Type:    "error",
		Content: message,
	})
}
