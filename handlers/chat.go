package handlers

import (
	"net/http"

	"merchify/services/conversation"
	"merchify/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatRequest is the expected input for a conversation turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type ChatHandler struct {
	manager *conversation.Manager
}

func NewChatHandler(manager *conversation.Manager) *ChatHandler {
	return &ChatHandler{manager: manager}
}

// HandleChat processes one conversation turn. A missing session id mints a
// new session so clients can start talking without a handshake.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := utils.GetLogger()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	result, err := h.manager.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		logger.Error("Chat turn failed", zap.String("session", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": req.SessionID,
		"result":     result,
	})
}

// ResetSession clears a session back to its initial state.
func (h *ChatHandler) ResetSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionID is required"})
		return
	}

	if err := h.manager.Reset(c.Request.Context(), sessionID); err != nil {
		utils.GetLogger().Error("Failed to reset session", zap.String("session", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset", "session_id": sessionID})
}
