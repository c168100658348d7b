package domain

import "time"

const (
	DocumentTypeDoc   = "doc"
	DocumentTypeSheet = "sheet"
	DocumentTypeImage = "image"
	DocumentTypePDF   = "pdf"
)

const (
	ResourceProject  = "project"
	ResourceDocument = "document"
	ResourceTask     = "task"
	ResourceComment  = "comment"
)

type Project struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Progress    int        `json:"progress"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Document struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity registra una accion de un usuario sobre un recurso.
type Activity struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReportSummary es el agregado que muestra la pagina de reportes.
type ReportSummary struct {
	ProjectCount     int            `json:"project_count"`
	AverageProgress  float64        `json:"average_progress"`
	DocumentsByType  map[string]int `json:"documents_by_type"`
	ActivitiesLast7d int            `json:"activities_last_7d"`
	GeneratedAt      time.Time      `json:"generated_at"`
}
