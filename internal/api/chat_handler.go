package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/phonewise/phonewise-be/internal/api/middleware"
	"github.com/phonewise/phonewise-be/internal/memory"
	"github.com/phonewise/phonewise-be/internal/response"
)

// ChatService is the conversation engine surface the chat routes need.
type ChatService interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (response.Response, error)
	History(ctx context.Context, sessionID string) ([]memory.Message, error)
	ClearSession(ctx context.Context, sessionID string) (bool, error)
}

type ChatHandler struct {
	engine ChatService
}

func NewChatHandler(engine ChatService) *ChatHandler {
	return &ChatHandler{engine: engine}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	// 30 messages per minute per session keeps one chatty client from
	// starving the model budget
	chat.Use(middleware.PerSession(30.0/60.0, 10))
	chat.POST("/session", h.CreateSession)
	chat.POST("/message", h.SendMessage)
	chat.GET("/history/:session_id", h.GetHistory)
	chat.DELETE("/history/:session_id", h.ClearHistory)
}

// CreateSession issues a fresh session ID for a new conversation.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session_id": uuid.NewString()})
}

type sendMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and message are required"})
		return
	}

	resp, err := h.engine.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		log.Printf("Failed to process message for session %s: %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  req.SessionID,
		"response":    resp.Response,
		"products":    resp.Products,
		"intent":      resp.Intent,
		"suggestions": resp.Suggestions,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.engine.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to get history for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	if messages == nil {
		messages = []memory.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (h *ChatHandler) ClearHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	cleared, err := h.engine.ClearSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to clear session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear conversation"})
		return
	}

	if !cleared {
		c.JSON(http.StatusOK, gin.H{"message": "No conversation found for this session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation cleared successfully"})
}
