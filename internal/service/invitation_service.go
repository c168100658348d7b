package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"progresshub/internal/db"
	"progresshub/internal/domain"
	"progresshub/internal/email"
	"progresshub/internal/repository"
)

var (
	ErrInvitationServiceNotConfigured = errors.New("invitation service not configured")
	ErrInvalidRole                    = errors.New("invalid role")
	ErrSelfInvite                     = errors.New("cannot invite yourself")
	ErrAlreadyMember                  = errors.New("user is already a member of this team")
	ErrInvitationExists               = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound             = errors.New("invitation not found")
	ErrInvitationForbidden            = errors.New("invitation does not belong to this user")
	ErrInvitationNotPending           = errors.New("invitation is no longer pending")
)

// InvitationService implementa el flujo de invitaciones a equipos.
type InvitationService struct {
	logger      *zap.Logger
	teams       repository.TeamRepository
	memberships repository.MembershipRepository
	invitations repository.InvitationRepository
	tx          TxRunner
	emailSender email.Sender
	limiter     RateLimiter
	appBaseURL  string
}

func NewInvitationService(
	logger *zap.Logger,
	teams repository.TeamRepository,
	memberships repository.MembershipRepository,
	invitations repository.InvitationRepository,
	tx TxRunner,
	emailSender email.Sender,
	limiter RateLimiter,
	appBaseURL string,
) *InvitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tx == nil {
		tx = noopTxRunner{}
	}
	if limiter == nil {
		limiter = NewRateLimiter(time.Hour, 50)
	}
	return &InvitationService{
		logger:      logger,
		teams:       teams,
		memberships: memberships,
		invitations: invitations,
		tx:          tx,
		emailSender: emailSender,
		limiter:     limiter,
		appBaseURL:  strings.TrimRight(appBaseURL, "/"),
	}
}

// SendInput describe una invitacion nueva.
type SendInput struct {
	Email   string
	Role    string
	Message string
}

func (s *InvitationService) configured() bool {
	return s != nil && s.teams != nil && s.memberships != nil && s.invitations != nil
}

// Send crea (si falta) el equipo del invitador, su membresia admin y la invitacion
// pendiente, todo en una transaccion. El email al invitado es best-effort.
func (s *InvitationService) Send(ctx context.Context, inviter domain.Identity, input SendInput) (domain.TeamInvitation, error) {
	if !s.configured() {
		return domain.TeamInvitation{}, ErrInvitationServiceNotConfigured
	}

	inviteeEmail := normalizeEmail(input.Email)
	if !isValidEmail(inviteeEmail) {
		return domain.TeamInvitation{}, ErrInvalidEmail
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidRole(role) {
		return domain.TeamInvitation{}, ErrInvalidRole
	}
	if inviteeEmail == normalizeEmail(inviter.Email) {
		return domain.TeamInvitation{}, ErrSelfInvite
	}
	if !s.limiter.Allow("invite:" + inviter.UserID) {
		return domain.TeamInvitation{}, ErrRateLimited
	}

	now := time.Now().UTC()
	var (
		team domain.Team
		inv  domain.TeamInvitation
	)
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		var err error
		team, err = s.teams.EnsureForOwner(ctx, domain.Team{
			ID:        uuid.NewString(),
			Name:      inviter.Name() + "'s Team",
			OwnerID:   inviter.UserID,
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("ensure team: %w", err)
		}

		if _, err := s.memberships.Upsert(ctx, domain.TeamMembership{
			ID:       uuid.NewString(),
			TeamID:   team.ID,
			UserID:   inviter.UserID,
			Email:    normalizeEmail(inviter.Email),
			Role:     domain.RoleAdmin,
			JoinedAt: now,
		}); err != nil {
			return fmt.Errorf("ensure owner membership: %w", err)
		}

		member, err := s.memberships.ExistsByEmail(ctx, team.ID, inviteeEmail)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if member {
			return ErrAlreadyMember
		}

		inv = domain.TeamInvitation{
			ID:        uuid.NewString(),
			TeamID:    team.ID,
			InviterID: inviter.UserID,
			Email:     inviteeEmail,
			Role:      role,
			Status:    domain.InvitationPending,
			Message:   strings.TrimSpace(input.Message),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.invitations.Create(ctx, inv); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrInvitationExists
			}
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.TeamInvitation{}, err
	}

	s.notifyInvitee(ctx, inviter, team, inv)
	return inv, nil
}

func (s *InvitationService) notifyInvitee(ctx context.Context, inviter domain.Identity, team domain.Team, inv domain.TeamInvitation) {
	if s.emailSender == nil {
		return
	}
	acceptURL := ""
	if s.appBaseURL != "" {
		acceptURL = s.appBaseURL + "/team?invitation=" + inv.ID
	}
	err := s.emailSender.SendInvitation(ctx, email.Invitation{
		ToEmail:     inv.Email,
		InviterName: inviter.Name(),
		TeamName:    team.Name,
		Role:        inv.Role,
		Message:     inv.Message,
		AcceptURL:   acceptURL,
	})
	if err != nil {
		s.logger.Warn("send invitation email failed",
			zap.Error(err),
			zap.String("invitation_id", inv.ID),
			zap.String("email", inv.Email),
		)
	}
}

// Accept marca la invitacion como aceptada y crea la membresia. Repetir Accept con
// el mismo usuario devuelve la membresia existente.
func (s *InvitationService) Accept(ctx context.Context, user domain.Identity, id string) (domain.TeamMembership, error) {
	if !s.configured() {
		return domain.TeamMembership{}, ErrInvitationServiceNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.TeamMembership{}, ErrInvitationNotFound
	}

	var membership domain.TeamMembership
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		inv, err := s.invitations.GetForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("load invitation: %w", err)
		}
		if normalizeEmail(inv.Email) != normalizeEmail(user.Email) {
			return ErrInvitationForbidden
		}

		now := time.Now().UTC()
		switch inv.Status {
		case domain.InvitationPending:
			if err := s.invitations.MarkAccepted(ctx, inv.ID, user.UserID, now); err != nil {
				if db.IsNotFound(err) {
					return ErrInvitationNotPending
				}
				return fmt.Errorf("mark accepted: %w", err)
			}
		case domain.InvitationAccepted:
			if inv.AcceptedBy != user.UserID {
				return ErrInvitationNotPending
			}
		default:
			return ErrInvitationNotPending
		}

		membership, err = s.memberships.Upsert(ctx, domain.TeamMembership{
			ID:       uuid.NewString(),
			TeamID:   inv.TeamID,
			UserID:   user.UserID,
			Email:    normalizeEmail(user.Email),
			Role:     inv.Role,
			JoinedAt: now,
		})
		if err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.TeamMembership{}, err
	}
	return membership, nil
}

// Cancel marca como cancelada una invitacion pendiente enviada por user.
func (s *InvitationService) Cancel(ctx context.Context, user domain.Identity, id string) error {
	return s.mutateSent(ctx, user, id, func(ctx context.Context, inv domain.TeamInvitation, now time.Time) error {
		return s.invitations.UpdateStatus(ctx, inv.ID, domain.InvitationCancelled, now)
	})
}

// Resend solo actualiza updated_at; no vuelve a enviar el email.
func (s *InvitationService) Resend(ctx context.Context, user domain.Identity, id string) error {
	return s.mutateSent(ctx, user, id, func(ctx context.Context, inv domain.TeamInvitation, now time.Time) error {
		return s.invitations.Touch(ctx, inv.ID, now)
	})
}

func (s *InvitationService) mutateSent(ctx context.Context, user domain.Identity, id string, apply func(ctx context.Context, inv domain.TeamInvitation, now time.Time) error) error {
	if !s.configured() {
		return ErrInvitationServiceNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvitationNotFound
	}

	return s.tx.Exec(ctx, func(ctx context.Context) error {
		inv, err := s.invitations.GetForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("load invitation: %w", err)
		}
		if inv.InviterID != user.UserID {
			return ErrInvitationForbidden
		}
		if inv.Status != domain.InvitationPending {
			return ErrInvitationNotPending
		}
		if err := apply(ctx, inv, time.Now().UTC()); err != nil {
			if db.IsNotFound(err) {
				return ErrInvitationNotFound
			}
			return err
		}
		return nil
	})
}

// ListReceived devuelve las invitaciones pendientes dirigidas al email de user.
func (s *InvitationService) ListReceived(ctx context.Context, user domain.Identity) ([]domain.TeamInvitation, error) {
	if !s.configured() {
		return nil, ErrInvitationServiceNotConfigured
	}
	emailAddr := normalizeEmail(user.Email)
	if emailAddr == "" {
		return []domain.TeamInvitation{}, nil
	}
	invitations, err := s.invitations.ListPendingByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	return nonNil(invitations), nil
}

// ListSent devuelve las invitaciones pendientes enviadas por user.
func (s *InvitationService) ListSent(ctx context.Context, user domain.Identity) ([]domain.TeamInvitation, error) {
	if !s.configured() {
		return nil, ErrInvitationServiceNotConfigured
	}
	invitations, err := s.invitations.ListPendingByInviter(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	return nonNil(invitations), nil
}

// ListMemberships devuelve las membresias de todos los equipos de los que user es dueño o miembro.
func (s *InvitationService) ListMemberships(ctx context.Context, user domain.Identity) ([]domain.TeamMembership, error) {
	if !s.configured() {
		return nil, ErrInvitationServiceNotConfigured
	}
	memberships, err := s.memberships.ListForUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	return nonNil(memberships), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
