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
	"progresshub/internal/repository"
)

var (
	ErrTaskServiceNotConfigured = errors.New("task service not configured")
	ErrTaskNotFound             = errors.New("task not found")
	ErrTaskInvalid              = errors.New("task title is required")
	ErrTaskStatus               = errors.New("invalid task status")
)

// TaskService mantiene el tablero de tareas de cada proyecto.
type TaskService struct {
	logger     *zap.Logger
	projects   repository.ProjectRepository
	tasks      repository.TaskRepository
	activities repository.ActivityRepository
	tx         TxRunner
}

func NewTaskService(
	logger *zap.Logger,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	activities repository.ActivityRepository,
	tx TxRunner,
) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tx == nil {
		tx = noopTxRunner{}
	}
	return &TaskService{logger: logger, projects: projects, tasks: tasks, activities: activities, tx: tx}
}

func (s *TaskService) configured() bool {
	return s != nil && s.projects != nil && s.tasks != nil && s.activities != nil
}

type TaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Assignee    string
	Status      string
}

func (s *TaskService) Create(ctx context.Context, user domain.Identity, input TaskInput) (domain.Task, error) {
	if !s.configured() {
		return domain.Task{}, ErrTaskServiceNotConfigured
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Task{}, ErrTaskInvalid
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = domain.TaskTodo
	}
	if !domain.ValidTaskStatus(status) {
		return domain.Task{}, ErrTaskStatus
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   strings.TrimSpace(input.ProjectID),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Assignee:    strings.TrimSpace(input.Assignee),
		Status:      status,
		CreatedBy:   user.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		if err := s.requireProject(ctx, task.ProjectID); err != nil {
			return err
		}
		if err := s.tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return s.record(ctx, user, "added task "+task.Title, task.ID, now)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Board devuelve las tareas del proyecto agrupadas por estado.
func (s *TaskService) Board(ctx context.Context, projectID string) (domain.TaskBoard, error) {
	if !s.configured() {
		return domain.TaskBoard{}, ErrTaskServiceNotConfigured
	}
	projectID = strings.TrimSpace(projectID)
	if err := s.requireProject(ctx, projectID); err != nil {
		return domain.TaskBoard{}, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return domain.TaskBoard{}, err
	}
	return domain.NewTaskBoard(projectID, tasks), nil
}

// Move cambia el estado de una tarea. Mover a su estado actual no registra actividad.
func (s *TaskService) Move(ctx context.Context, user domain.Identity, id, status string) (domain.Task, error) {
	if !s.configured() {
		return domain.Task{}, ErrTaskServiceNotConfigured
	}
	status = strings.TrimSpace(status)
	if !domain.ValidTaskStatus(status) {
		return domain.Task{}, ErrTaskStatus
	}

	var task domain.Task
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.get(ctx, id)
		if err != nil {
			return err
		}
		if task.Status == status {
			return nil
		}
		task.Status = status
		task.UpdatedAt = time.Now().UTC()
		if err := s.tasks.UpdateStatus(ctx, task.ID, status, task.UpdatedAt); err != nil {
			if db.IsNotFound(err) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("update task: %w", err)
		}
		return s.record(ctx, user, "moved task "+task.Title+" to "+status, task.ID, task.UpdatedAt)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, user domain.Identity, id string) error {
	if !s.configured() {
		return ErrTaskServiceNotConfigured
	}
	return s.tx.Exec(ctx, func(ctx context.Context) error {
		task, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.tasks.Delete(ctx, task.ID); err != nil {
			if db.IsNotFound(err) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("delete task: %w", err)
		}
		return s.record(ctx, user, "deleted task "+task.Title, task.ID, time.Now().UTC())
	})
}

func (s *TaskService) get(ctx context.Context, id string) (domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if db.IsNotFound(err) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) requireProject(ctx context.Context, projectID string) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if db.IsNotFound(err) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) record(ctx context.Context, user domain.Identity, action, taskID string, at time.Time) error {
	err := s.activities.Create(ctx, domain.Activity{
		ID:           uuid.NewString(),
		UserID:       user.UserID,
		Action:       action,
		ResourceType: domain.ResourceTask,
		ResourceID:   taskID,
		Timestamp:    at,
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}
