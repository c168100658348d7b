package client

import (
	"context"
	"net/http"
	"net/url"

	"progresshub/internal/domain"
)

type invitationsResponse struct {
	Invitations []domain.TeamInvitation `json:"invitations"`
}

func (c *Client) Memberships(ctx context.Context) ([]domain.TeamMembership, error) {
	var resp struct {
		Memberships []domain.TeamMembership `json:"memberships"`
	}
	err := c.authed(ctx, http.MethodGet, "/teams/memberships", nil, &resp)
	return resp.Memberships, err
}

// ReceivedInvitations lista las invitaciones pendientes dirigidas al usuario actual.
func (c *Client) ReceivedInvitations(ctx context.Context) ([]domain.TeamInvitation, error) {
	var resp invitationsResponse
	err := c.authed(ctx, http.MethodGet, "/teams/invitations/received", nil, &resp)
	return resp.Invitations, err
}

// SentInvitations lista las invitaciones pendientes enviadas por el usuario actual.
func (c *Client) SentInvitations(ctx context.Context) ([]domain.TeamInvitation, error) {
	var resp invitationsResponse
	err := c.authed(ctx, http.MethodGet, "/teams/invitations/sent", nil, &resp)
	return resp.Invitations, err
}

func (c *Client) SendInvitation(ctx context.Context, email, role, message string) (domain.TeamInvitation, error) {
	var resp struct {
		Invitation domain.TeamInvitation `json:"invitation"`
	}
	err := c.authed(ctx, http.MethodPost, "/teams/invitations", map[string]string{
		"email":   email,
		"role":    role,
		"message": message,
	}, &resp)
	return resp.Invitation, err
}

func (c *Client) AcceptInvitation(ctx context.Context, id string) (domain.TeamMembership, error) {
	var resp struct {
		Membership domain.TeamMembership `json:"membership"`
	}
	err := c.authed(ctx, http.MethodPost, "/teams/invitations/"+url.PathEscape(id)+"/accept", nil, &resp)
	return resp.Membership, err
}

func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodPost, "/teams/invitations/"+url.PathEscape(id)+"/cancel", nil, nil)
}

func (c *Client) ResendInvitation(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodPost, "/teams/invitations/"+url.PathEscape(id)+"/resend", nil, nil)
}

func (c *Client) Messages(ctx context.Context, teamID string) ([]domain.Message, error) {
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	err := c.authed(ctx, http.MethodGet, "/teams/"+url.PathEscape(teamID)+"/messages", nil, &resp)
	return resp.Messages, err
}

func (c *Client) PostMessage(ctx context.Context, teamID, content string) (domain.Message, error) {
	var resp struct {
		Message domain.Message `json:"message"`
	}
	err := c.authed(ctx, http.MethodPost, "/teams/"+url.PathEscape(teamID)+"/messages", map[string]string{"content": content}, &resp)
	return resp.Message, err
}
