package client

import (
	"context"
	"net/http"

	"progresshub/internal/domain"
)

type sessionResponse struct {
	Session domain.AuthSession `json:"session"`
}

// SignUp registra un usuario nuevo; el backend envia el codigo de confirmacion.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}, &resp)
	return resp.User, err
}

// ConfirmSignUp canjea el codigo de confirmacion por una sesion.
func (c *Client) ConfirmSignUp(ctx context.Context, email, code string) (domain.AuthSession, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/confirm", "", map[string]string{"email": email, "code": code}, &resp)
	return resp.Session, err
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/confirm/resend", "", map[string]string{"email": email}, nil)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (domain.AuthSession, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &resp)
	return resp.Session, err
}

// Refresh rota el refresh token y devuelve la sesion nueva.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.AuthSession, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refreshToken}, &resp)
	return resp.Session, err
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": refreshToken}, nil)
}

// GetUser devuelve la identidad asociada a accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (domain.Identity, error) {
	var resp struct {
		User domain.Identity `json:"user"`
	}
	if accessToken == "" {
		return domain.Identity{}, ErrNoToken
	}
	err := c.do(ctx, http.MethodGet, "/auth/user", accessToken, nil, &resp)
	return resp.User, err
}
