package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
)

// SessionRepository persiste los refresh tokens vigentes (jti) por usuario.
type SessionRepository interface {
	Create(ctx context.Context, jti, userID string, expiresAt time.Time) error
	Exists(ctx context.Context, jti string, now time.Time) (bool, error)
	Delete(ctx context.Context, jti string) error
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	const query = `
		INSERT INTO auth_sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		jti,
		userID,
		expiresAt,
		time.Now().UTC(),
	)
	return err
}

func (r *PgSessionRepository) Exists(ctx context.Context, jti string, now time.Time) (bool, error) {
	const query = `
		SELECT 1
		FROM auth_sessions
		WHERE id = $1 AND expires_at > $2
	`
	var one int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, jti, now).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgSessionRepository) Delete(ctx context.Context, jti string) error {
	const query = `DELETE FROM auth_sessions WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, jti)
	return err
}
