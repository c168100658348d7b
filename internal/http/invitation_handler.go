package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"progresshub/internal/service"
)

// InvitationHandler expone el flujo de invitaciones de equipo.
type InvitationHandler struct {
	logger  *zap.Logger
	invites *service.InvitationService
}

func NewInvitationHandler(logger *zap.Logger, invites *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{logger: logger, invites: invites}
}

// Send maneja POST /teams/invitations.
func (h *InvitationHandler) Send(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Email   string `json:"email" binding:"required"`
		Role    string `json:"role"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send invitation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	inv, err := h.invites.Send(c.Request.Context(), identity, service.SendInput{
		Email:   req.Email,
		Role:    req.Role,
		Message: req.Message,
	})
	if err != nil {
		h.respondError(c, "send invitation failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

// Accept maneja POST /teams/invitations/:id/accept.
func (h *InvitationHandler) Accept(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	membership, err := h.invites.Accept(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.respondError(c, "accept invitation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

// Cancel maneja POST /teams/invitations/:id/cancel.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.invites.Cancel(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.respondError(c, "cancel invitation failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Resend maneja POST /teams/invitations/:id/resend.
func (h *InvitationHandler) Resend(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.invites.Resend(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.respondError(c, "resend invitation failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReceived maneja GET /teams/invitations/received.
func (h *InvitationHandler) ListReceived(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	invitations, err := h.invites.ListReceived(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, "list received invitations failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// ListSent maneja GET /teams/invitations/sent.
func (h *InvitationHandler) ListSent(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	invitations, err := h.invites.ListSent(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, "list sent invitations failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// ListMemberships maneja GET /teams/memberships.
func (h *InvitationHandler) ListMemberships(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	memberships, err := h.invites.ListMemberships(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, "list memberships failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": memberships})
}

func (h *InvitationHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrSelfInvite):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvitationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvitationForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInvitationExists),
		errors.Is(err, service.ErrInvitationNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process invitation"})
	}
}
