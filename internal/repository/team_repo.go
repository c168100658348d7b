package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

// TeamRepository define el contrato de persistencia para equipos.
type TeamRepository interface {
	// EnsureForOwner crea el equipo si el owner no tiene uno y devuelve el vigente.
	EnsureForOwner(ctx context.Context, team domain.Team) (domain.Team, error)
	GetByOwner(ctx context.Context, ownerID string) (domain.Team, error)
	GetByID(ctx context.Context, id string) (domain.Team, error)
}

type PgTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgTeamRepository(pool *pgxpool.Pool) *PgTeamRepository {
	return &PgTeamRepository{pool: pool}
}

func (r *PgTeamRepository) EnsureForOwner(ctx context.Context, team domain.Team) (domain.Team, error) {
	const insert = `
		INSERT INTO teams (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO NOTHING
	`
	conn := db.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, insert, team.ID, team.Name, team.OwnerID, team.CreatedAt); err != nil {
		return domain.Team{}, err
	}
	return r.GetByOwner(ctx, team.OwnerID)
}

func (r *PgTeamRepository) GetByOwner(ctx context.Context, ownerID string) (domain.Team, error) {
	const query = `
		SELECT id, name, owner_id, created_at
		FROM teams
		WHERE owner_id = $1
	`
	var t domain.Team
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, ownerID).Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

func (r *PgTeamRepository) GetByID(ctx context.Context, id string) (domain.Team, error) {
	const query = `
		SELECT id, name, owner_id, created_at
		FROM teams
		WHERE id = $1
	`
	var t domain.Team
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}
