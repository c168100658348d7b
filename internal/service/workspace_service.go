package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"progresshub/internal/db"
	"progresshub/internal/domain"
	"progresshub/internal/repository"
)

var (
	ErrWorkspaceNotConfigured = errors.New("workspace service not configured")
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectInvalid         = errors.New("project name is required")
	ErrProgressOutOfRange     = errors.New("progress must be between 0 and 100")
	ErrDocumentInvalid        = errors.New("document title is required")
	ErrDocumentType           = errors.New("invalid document type")
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
	reportActivityWindow = 7 * 24 * time.Hour
)

// WorkspaceService sirve los datos de las paginas de proyectos, documentos,
// actividad y reportes.
type WorkspaceService struct {
	logger     *zap.Logger
	projects   repository.ProjectRepository
	documents  repository.DocumentRepository
	activities repository.ActivityRepository
	tx         TxRunner
}

func NewWorkspaceService(
	logger *zap.Logger,
	projects repository.ProjectRepository,
	documents repository.DocumentRepository,
	activities repository.ActivityRepository,
	tx TxRunner,
) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tx == nil {
		tx = noopTxRunner{}
	}
	return &WorkspaceService{
		logger:     logger,
		projects:   projects,
		documents:  documents,
		activities: activities,
		tx:         tx,
	}
}

func (s *WorkspaceService) configured() bool {
	return s != nil && s.projects != nil && s.documents != nil && s.activities != nil
}

// ProjectInput son los campos editables de un proyecto.
type ProjectInput struct {
	Name        string
	Description string
	Progress    int
	DueDate     *time.Time
}

// ProjectPatch actualiza solo los campos no nil.
type ProjectPatch struct {
	Description *string
	Progress    *int
	DueDate     *time.Time
}

func (s *WorkspaceService) CreateProject(ctx context.Context, user domain.Identity, input ProjectInput) (domain.Project, error) {
	if !s.configured() {
		return domain.Project{}, ErrWorkspaceNotConfigured
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Project{}, ErrProjectInvalid
	}
	if input.Progress < 0 || input.Progress > 100 {
		return domain.Project{}, ErrProgressOutOfRange
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          uuid.NewString(),
		OwnerID:     user.UserID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Progress:    input.Progress,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return s.record(ctx, user, "created project "+project.Name, domain.ResourceProject, project.ID, now)
	})
	if err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *WorkspaceService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	if !s.configured() {
		return domain.Project{}, ErrWorkspaceNotConfigured
	}
	project, err := s.projects.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if db.IsNotFound(err) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	return project, nil
}

// ListProjects devuelve los proyectos, mas recientes primero.
func (s *WorkspaceService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if !s.configured() {
		return nil, ErrWorkspaceNotConfigured
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(projects), nil
}

func (s *WorkspaceService) UpdateProject(ctx context.Context, user domain.Identity, id string, patch ProjectPatch) (domain.Project, error) {
	if !s.configured() {
		return domain.Project{}, ErrWorkspaceNotConfigured
	}
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return domain.Project{}, ErrProgressOutOfRange
	}

	var project domain.Project
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.GetProject(ctx, id)
		if err != nil {
			return err
		}
		if patch.Description != nil {
			project.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Progress != nil {
			project.Progress = *patch.Progress
		}
		if patch.DueDate != nil {
			project.DueDate = patch.DueDate
		}
		project.UpdatedAt = time.Now().UTC()

		if err := s.projects.Update(ctx, project); err != nil {
			if db.IsNotFound(err) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("update project: %w", err)
		}
		return s.record(ctx, user, "updated project "+project.Name, domain.ResourceProject, project.ID, project.UpdatedAt)
	})
	if err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// DocumentInput describe un documento nuevo.
type DocumentInput struct {
	ProjectID string
	Title     string
	Type      string
}

func (s *WorkspaceService) CreateDocument(ctx context.Context, user domain.Identity, input DocumentInput) (domain.Document, error) {
	if !s.configured() {
		return domain.Document{}, ErrWorkspaceNotConfigured
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Document{}, ErrDocumentInvalid
	}
	docType := strings.ToLower(strings.TrimSpace(input.Type))
	if docType == "" {
		docType = domain.DocumentTypeDoc
	}
	if !validDocumentType(docType) {
		return domain.Document{}, ErrDocumentType
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:        uuid.NewString(),
		ProjectID: strings.TrimSpace(input.ProjectID),
		Title:     title,
		Type:      docType,
		CreatedBy: user.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		if _, err := s.GetProject(ctx, doc.ProjectID); err != nil {
			return err
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.record(ctx, user, "uploaded "+doc.Title, domain.ResourceDocument, doc.ID, now)
	})
	if err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *WorkspaceService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if !s.configured() {
		return nil, ErrWorkspaceNotConfigured
	}
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// DocumentsByProject devuelve los documentos de un proyecto existente.
func (s *WorkspaceService) DocumentsByProject(ctx context.Context, projectID string) ([]domain.Document, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByProject(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// RecentActivities devuelve la actividad mas reciente. limit <= 0 usa 10; maximo 100.
func (s *WorkspaceService) RecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	if !s.configured() {
		return nil, ErrWorkspaceNotConfigured
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := s.activities.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(activities), nil
}

// Summary agrega los datos de la pagina de reportes. Las consultas corren en paralelo.
func (s *WorkspaceService) Summary(ctx context.Context) (domain.ReportSummary, error) {
	if !s.configured() {
		return domain.ReportSummary{}, ErrWorkspaceNotConfigured
	}

	now := time.Now().UTC()
	summary := domain.ReportSummary{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, avg, err := s.projects.Stats(gctx)
		if err != nil {
			return fmt.Errorf("project stats: %w", err)
		}
		summary.ProjectCount = count
		summary.AverageProgress = avg
		return nil
	})
	g.Go(func() error {
		byType, err := s.documents.CountByType(gctx)
		if err != nil {
			return fmt.Errorf("document stats: %w", err)
		}
		summary.DocumentsByType = byType
		return nil
	})
	g.Go(func() error {
		n, err := s.activities.CountSince(gctx, now.Add(-reportActivityWindow))
		if err != nil {
			return fmt.Errorf("activity stats: %w", err)
		}
		summary.ActivitiesLast7d = n
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("build report summary failed", zap.Error(err))
		return domain.ReportSummary{}, err
	}
	if summary.DocumentsByType == nil {
		summary.DocumentsByType = map[string]int{}
	}
	return summary, nil
}

func (s *WorkspaceService) record(ctx context.Context, user domain.Identity, action, resourceType, resourceID string, at time.Time) error {
	err := s.activities.Create(ctx, domain.Activity{
		ID:           uuid.NewString(),
		UserID:       user.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Timestamp:    at,
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func validDocumentType(t string) bool {
	switch t {
	case domain.DocumentTypeDoc, domain.DocumentTypeSheet, domain.DocumentTypeImage, domain.DocumentTypePDF:
		return true
	}
	return false
}
