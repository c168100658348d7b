package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"progresshub/internal/domain"
)

// NewProject son los campos de creacion de un proyecto.
type NewProject struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Progress    int        `json:"progress"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ProjectPatch envia solo los campos no nil.
type ProjectPatch struct {
	Description *string    `json:"description,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type NewDocument struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Type      string `json:"type,omitempty"`
}

type projectResponse struct {
	Project domain.Project `json:"project"`
}

type documentsResponse struct {
	Documents []domain.Document `json:"documents"`
}

func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	var resp struct {
		Projects []domain.Project `json:"projects"`
	}
	err := c.authed(ctx, http.MethodGet, "/projects", nil, &resp)
	return resp.Projects, err
}

func (c *Client) CreateProject(ctx context.Context, in NewProject) (domain.Project, error) {
	var resp projectResponse
	err := c.authed(ctx, http.MethodPost, "/projects", in, &resp)
	return resp.Project, err
}

func (c *Client) Project(ctx context.Context, id string) (domain.Project, error) {
	var resp projectResponse
	err := c.authed(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &resp)
	return resp.Project, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (domain.Project, error) {
	var resp projectResponse
	err := c.authed(ctx, http.MethodPatch, "/projects/"+url.PathEscape(id), patch, &resp)
	return resp.Project, err
}

// ProjectDocuments lista los documentos de un proyecto.
func (c *Client) ProjectDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	var resp documentsResponse
	err := c.authed(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/documents", nil, &resp)
	return resp.Documents, err
}

func (c *Client) Documents(ctx context.Context) ([]domain.Document, error) {
	var resp documentsResponse
	err := c.authed(ctx, http.MethodGet, "/documents", nil, &resp)
	return resp.Documents, err
}

func (c *Client) CreateDocument(ctx context.Context, in NewDocument) (domain.Document, error) {
	var resp struct {
		Document domain.Document `json:"document"`
	}
	err := c.authed(ctx, http.MethodPost, "/documents", in, &resp)
	return resp.Document, err
}

// Activities devuelve la actividad reciente; limit <= 0 usa el default del servidor.
func (c *Client) Activities(ctx context.Context, limit int) ([]domain.Activity, error) {
	path := "/activities"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Activities []domain.Activity `json:"activities"`
	}
	err := c.authed(ctx, http.MethodGet, path, nil, &resp)
	return resp.Activities, err
}

func (c *Client) ReportSummary(ctx context.Context) (domain.ReportSummary, error) {
	var resp struct {
		Summary domain.ReportSummary `json:"summary"`
	}
	err := c.authed(ctx, http.MethodGet, "/reports/summary", nil, &resp)
	return resp.Summary, err
}
