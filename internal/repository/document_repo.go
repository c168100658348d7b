package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	List(ctx context.Context) ([]domain.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Document, error)
	CountByType(ctx context.Context) (map[string]int, error)
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

const documentColumns = `id, project_id, title, type, created_by, created_at, updated_at`

func (r *PgDocumentRepository) Create(ctx context.Context, d domain.Document) error {
	const query = `
		INSERT INTO documents (id, project_id, title, type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, d.ID, d.ProjectID, d.Title, d.Type, d.CreatedBy, d.CreatedAt, d.UpdatedAt)
	return err
}

func (r *PgDocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY updated_at DESC`
	return r.list(ctx, query)
}

func (r *PgDocumentRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE project_id = $1 ORDER BY updated_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *PgDocumentRepository) CountByType(ctx context.Context) (map[string]int, error) {
	const query = `SELECT type, count(*) FROM documents GROUP BY type`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			docType string
			n       int
		)
		if err := rows.Scan(&docType, &n); err != nil {
			return nil, err
		}
		counts[docType] = n
	}
	return counts, rows.Err()
}

func (r *PgDocumentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.ProjectID, &d.Title, &d.Type, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Document{}, err
	}
	return d, nil
}
