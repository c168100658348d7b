package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type PgActivityRepository struct {
	pool *pgxpool.Pool
}

func NewPgActivityRepository(pool *pgxpool.Pool) *PgActivityRepository {
	return &PgActivityRepository{pool: pool}
}

func (r *PgActivityRepository) Create(ctx context.Context, a domain.Activity) error {
	const query = `
		INSERT INTO activities (id, user_id, action, resource_type, resource_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, a.ID, a.UserID, a.Action, a.ResourceType, a.ResourceID, a.Timestamp)
	return err
}

func (r *PgActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	const query = `
		SELECT id, user_id, action, resource_type, resource_id, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.ResourceType, &a.ResourceID, &a.Timestamp); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *PgActivityRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT count(*) FROM activities WHERE created_at >= $1`
	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
