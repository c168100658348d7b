package domain

import (
	"strings"
	"time"
)

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name,omitempty"`
	PasswordHash     string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	ConfirmCodeHash  string     `json:"-"`
	ConfirmExpiresAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Confirmed indica si el usuario completo la confirmacion de email.
func (u User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Identity devuelve la vista publica del usuario autenticado.
func (u User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// Identity es el usuario autenticado tal como lo ve el resto del sistema.
type Identity struct {
	UserID      string `json:"id" toml:"id"`
	Email       string `json:"email" toml:"email"`
	DisplayName string `json:"display_name,omitempty" toml:"display_name"`
}

// Name devuelve el nombre visible, usando el local-part del email como fallback.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if idx := strings.IndexByte(i.Email, '@'); idx > 0 {
		return i.Email[:idx]
	}
	return i.Email
}
