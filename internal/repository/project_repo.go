package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetByID(ctx context.Context, id string) (domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	List(ctx context.Context) ([]domain.Project, error)
	Stats(ctx context.Context) (count int, avgProgress float64, err error)
}

type PgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

const projectColumns = `id, owner_id, name, description, progress, due_date, created_at, updated_at`

func (r *PgProjectRepository) Create(ctx context.Context, p domain.Project) error {
	const query = `
		INSERT INTO projects (id, owner_id, name, description, progress, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.Progress,
		p.DueDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *PgProjectRepository) Update(ctx context.Context, p domain.Project) error {
	const query = `
		UPDATE projects
		SET name = $2, description = $3, progress = $4, due_date = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, p.ID, p.Name, p.Description, p.Progress, p.DueDate, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *PgProjectRepository) Stats(ctx context.Context) (int, float64, error) {
	const query = `SELECT count(*), COALESCE(avg(progress), 0)::float8 FROM projects`
	var (
		count int
		avg   float64
	)
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query).Scan(&count, &avg); err != nil {
		return 0, 0, err
	}
	return count, avg, nil
}

func scanProject(row pgx.Row) (domain.Project, error) {
	var (
		p   domain.Project
		due *time.Time
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Progress, &due, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.DueDate = due
	return p, nil
}
