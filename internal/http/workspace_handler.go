package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"progresshub/internal/service"
)

// WorkspaceHandler expone proyectos, documentos, actividad y reportes.
type WorkspaceHandler struct {
	logger    *zap.Logger
	workspace *service.WorkspaceService
}

func NewWorkspaceHandler(logger *zap.Logger, workspace *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{logger: logger, workspace: workspace}
}

// ListProjects maneja GET /projects.
func (h *WorkspaceHandler) ListProjects(c *gin.Context) {
	projects, err := h.workspace.ListProjects(c.Request.Context())
	if err != nil {
		h.respondError(c, "list projects failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject maneja POST /projects.
func (h *WorkspaceHandler) CreateProject(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Name        string     `json:"name" binding:"required"`
		Description string     `json:"description"`
		Progress    int        `json:"progress"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create project request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.workspace.CreateProject(c.Request.Context(), identity, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, "create project failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// GetProject maneja GET /projects/:id.
func (h *WorkspaceHandler) GetProject(c *gin.Context) {
	project, err := h.workspace.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get project failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// UpdateProject maneja PATCH /projects/:id.
func (h *WorkspaceHandler) UpdateProject(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Description *string    `json:"description"`
		Progress    *int       `json:"progress"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update project request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := h.workspace.UpdateProject(c.Request.Context(), identity, c.Param("id"), service.ProjectPatch{
		Description: req.Description,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, "update project failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// ListProjectDocuments maneja GET /projects/:id/documents.
func (h *WorkspaceHandler) ListProjectDocuments(c *gin.Context) {
	docs, err := h.workspace.DocumentsByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "list project documents failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// ListDocuments maneja GET /documents.
func (h *WorkspaceHandler) ListDocuments(c *gin.Context) {
	docs, err := h.workspace.ListDocuments(c.Request.Context())
	if err != nil {
		h.respondError(c, "list documents failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// CreateDocument maneja POST /documents.
func (h *WorkspaceHandler) CreateDocument(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req struct {
		ProjectID string `json:"project_id" binding:"required"`
		Title     string `json:"title" binding:"required"`
		Type      string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create document request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc, err := h.workspace.CreateDocument(c.Request.Context(), identity, service.DocumentInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Type:      req.Type,
	})
	if err != nil {
		h.respondError(c, "create document failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// RecentActivities maneja GET /activities?limit=N.
func (h *WorkspaceHandler) RecentActivities(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	activities, err := h.workspace.RecentActivities(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "list activities failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// ReportSummary maneja GET /reports/summary.
func (h *WorkspaceHandler) ReportSummary(c *gin.Context) {
	summary, err := h.workspace.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, "report summary failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *WorkspaceHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProjectInvalid),
		errors.Is(err, service.ErrProgressOutOfRange),
		errors.Is(err, service.ErrDocumentInvalid),
		errors.Is(err, service.ErrDocumentType):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
	}
}
