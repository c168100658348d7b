package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

// MembershipRepository define el contrato de persistencia para team_members.
type MembershipRepository interface {
	// Upsert inserta la membresia si (team, user) no existe y devuelve la fila vigente.
	Upsert(ctx context.Context, m domain.TeamMembership) (domain.TeamMembership, error)
	Get(ctx context.Context, teamID, userID string) (domain.TeamMembership, error)
	ExistsByEmail(ctx context.Context, teamID, email string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]domain.TeamMembership, error)
}

type PgMembershipRepository struct {
	pool *pgxpool.Pool
}

func NewPgMembershipRepository(pool *pgxpool.Pool) *PgMembershipRepository {
	return &PgMembershipRepository{pool: pool}
}

func (r *PgMembershipRepository) Upsert(ctx context.Context, m domain.TeamMembership) (domain.TeamMembership, error) {
	const insert = `
		INSERT INTO team_members (id, team_id, user_id, email, role, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`
	conn := db.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, insert, m.ID, m.TeamID, m.UserID, m.Email, m.Role, m.JoinedAt); err != nil {
		return domain.TeamMembership{}, err
	}
	return r.Get(ctx, m.TeamID, m.UserID)
}

func (r *PgMembershipRepository) Get(ctx context.Context, teamID, userID string) (domain.TeamMembership, error) {
	const query = `
		SELECT id, team_id, user_id, email, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`
	var m domain.TeamMembership
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, teamID, userID).Scan(
		&m.ID,
		&m.TeamID,
		&m.UserID,
		&m.Email,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		return domain.TeamMembership{}, err
	}
	return m, nil
}

func (r *PgMembershipRepository) ExistsByEmail(ctx context.Context, teamID, email string) (bool, error) {
	const query = `
		SELECT 1 FROM team_members
		WHERE team_id = $1 AND lower(email) = lower($2)
		LIMIT 1
	`
	var one int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, teamID, email).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgMembershipRepository) ListForUser(ctx context.Context, userID string) ([]domain.TeamMembership, error) {
	const query = `
		SELECT m.id, m.team_id, m.user_id, m.email, m.role, m.joined_at
		FROM team_members m
		WHERE m.team_id IN (
			SELECT id FROM teams WHERE owner_id = $1
			UNION
			SELECT team_id FROM team_members WHERE user_id = $1
		)
		ORDER BY m.team_id, m.joined_at ASC
	`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.TeamMembership
	for rows.Next() {
		var m domain.TeamMembership
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
