package handlers

import (
	"net/http"

	chatlogRepo "merchify/database/repository/chatlog"
	"merchify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatLogHandler struct {
	repo chatlogRepo.ChatLogRepository
}

func NewChatLogHandler(repo chatlogRepo.ChatLogRepository) *ChatLogHandler {
	return &ChatLogHandler{repo: repo}
}

// GetSessionLog returns a session's audit trail with its duplicate count.
func (h *ChatLogHandler) GetSessionLog(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionID is required"})
		return
	}

	records, err := h.repo.BySession(c.Request.Context(), sessionID)
	if err != nil {
		utils.GetLogger().Error("Failed to load session log", zap.String("session", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session log"})
		return
	}

	duplicates, err := h.repo.DuplicateCount(c.Request.Context(), sessionID)
	if err != nil {
		utils.GetLogger().Warn("Failed to count duplicates", zap.String("session", sessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"turns":      records,
		"duplicates": duplicates,
	})
}
