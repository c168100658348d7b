package email

import (
	"context"
	"errors"
	"time"
)

// Invitation son los datos que necesita el correo de invitacion a un equipo.
type Invitation struct {
	ToEmail     string
	InviterName string
	TeamName    string
	Role        string
	Message     string
	AcceptURL   string
}

// Sender define la interfaz para el envio de correos transaccionales.
type Sender interface {
	SendConfirmationCode(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendInvitation(ctx context.Context, inv Invitation) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendConfirmationCode(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendInvitation(_ context.Context, _ Invitation) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
