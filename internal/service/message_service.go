package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"progresshub/internal/db"
	"progresshub/internal/domain"
	"progresshub/internal/repository"
)

// MessageService maneja los mensajes de un equipo. Solo los miembros leen y escriben.
type MessageService struct {
	repo        repository.MessageRepository
	memberships repository.MembershipRepository
}

var (
	ErrMessageServiceNotConfigured = errors.New("message service not configured")
	ErrMessageInvalidInput         = errors.New("message invalid input")
	ErrNotTeamMember               = errors.New("user is not a member of this team")
)

const messageHistoryLimit = 50

func NewMessageService(repo repository.MessageRepository, memberships repository.MembershipRepository) *MessageService {
	return &MessageService{repo: repo, memberships: memberships}
}

func (s *MessageService) Post(ctx context.Context, user domain.Identity, teamID, content string) (domain.Message, error) {
	if s == nil || s.repo == nil || s.memberships == nil {
		return domain.Message{}, ErrMessageServiceNotConfigured
	}

	teamID = strings.TrimSpace(teamID)
	content = strings.TrimSpace(content)
	if teamID == "" || content == "" {
		return domain.Message{}, ErrMessageInvalidInput
	}
	if err := s.requireMember(ctx, teamID, user.UserID); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    user.UserID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// List devuelve los ultimos mensajes del equipo, mas antiguos primero.
func (s *MessageService) List(ctx context.Context, user domain.Identity, teamID string) ([]domain.Message, error) {
	if s == nil || s.repo == nil || s.memberships == nil {
		return nil, ErrMessageServiceNotConfigured
	}
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrMessageInvalidInput
	}
	if err := s.requireMember(ctx, teamID, user.UserID); err != nil {
		return nil, err
	}
	messages, err := s.repo.ListByTeam(ctx, teamID, messageHistoryLimit)
	if err != nil {
		return nil, err
	}
	return nonNil(messages), nil
}

func (s *MessageService) requireMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.memberships.Get(ctx, teamID, userID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotTeamMember
		}
		return err
	}
	return nil
}
