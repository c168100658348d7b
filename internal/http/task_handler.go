package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"progresshub/internal/service"
)

// TaskHandler expone el tablero de tareas de un proyecto.
type TaskHandler struct {
	logger *zap.Logger
	tasks  *service.TaskService
}

func NewTaskHandler(logger *zap.Logger, tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{logger: logger, tasks: tasks}
}

// Board maneja GET /projects/:id/tasks.
func (h *TaskHandler) Board(c *gin.Context) {
	board, err := h.tasks.Board(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "load task board failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board})
}

// Create maneja POST /projects/:id/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Assignee    string `json:"assignee"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), identity, service.TaskInput{
		ProjectID:   c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(c, "create task failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// Move maneja PATCH /tasks/:id.
func (h *TaskHandler) Move(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid move task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.tasks.Move(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, "move task failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Delete maneja DELETE /tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.respondError(c, "delete task failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskInvalid), errors.Is(err, service.ErrTaskStatus):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
	}
}
