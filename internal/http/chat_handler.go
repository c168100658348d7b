package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"progresshub/internal/service"
)

// ChatHandler mantiene dependencias para los mensajes de equipo.
type ChatHandler struct {
	logger   *zap.Logger
	messages *service.MessageService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, messages *service.MessageService) *ChatHandler {
	return &ChatHandler{logger: logger, messages: messages}
}

// PostMessage maneja POST /teams/:id/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg, err := h.messages.Post(c.Request.Context(), identity, c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, "post message failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// ListMessages maneja GET /teams/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	messages, err := h.messages.List(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.respondError(c, "list messages failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *ChatHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrMessageInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrNotTeamMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
	}
}
