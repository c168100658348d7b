package client

import (
	"context"
	"net/http"
	"net/url"

	"progresshub/internal/domain"
)

type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Status      string `json:"status,omitempty"`
}

type taskResponse struct {
	Task domain.Task `json:"task"`
}

// TaskBoard devuelve las tareas del proyecto agrupadas por estado.
func (c *Client) TaskBoard(ctx context.Context, projectID string) (domain.TaskBoard, error) {
	var resp struct {
		Board domain.TaskBoard `json:"board"`
	}
	err := c.authed(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/tasks", nil, &resp)
	return resp.Board, err
}

func (c *Client) CreateTask(ctx context.Context, projectID string, in NewTask) (domain.Task, error) {
	var resp taskResponse
	err := c.authed(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/tasks", in, &resp)
	return resp.Task, err
}

func (c *Client) MoveTask(ctx context.Context, id, status string) (domain.Task, error) {
	var resp taskResponse
	body := map[string]string{"status": status}
	err := c.authed(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), body, &resp)
	return resp.Task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}
