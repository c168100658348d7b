package domain

import "time"

// AuthSession agrupa los tokens emitidos para una identidad.
type AuthSession struct {
	AccessToken  string    `json:"access_token" toml:"access_token"`
	RefreshToken string    `json:"refresh_token" toml:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" toml:"expires_at"`
	User         Identity  `json:"user" toml:"user"`
}

// ExpiresWithin indica si el access token vence antes de d.
func (s AuthSession) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(d))
}
