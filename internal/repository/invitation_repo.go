package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

// InvitationRepository define el contrato de persistencia para team_invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv domain.TeamInvitation) error
	GetByID(ctx context.Context, id string) (domain.TeamInvitation, error)
	// GetForUpdate bloquea la fila hasta el fin de la transaccion en curso.
	GetForUpdate(ctx context.Context, id string) (domain.TeamInvitation, error)
	MarkAccepted(ctx context.Context, id, userID string, at time.Time) error
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Touch(ctx context.Context, id string, at time.Time) error
	ListPendingByEmail(ctx context.Context, email string) ([]domain.TeamInvitation, error)
	ListPendingByInviter(ctx context.Context, inviterID string) ([]domain.TeamInvitation, error)
}

type PgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewPgInvitationRepository(pool *pgxpool.Pool) *PgInvitationRepository {
	return &PgInvitationRepository{pool: pool}
}

const invitationColumns = `id, team_id, inviter_id, email, role, status, message, accepted_by, created_at, updated_at`

func (r *PgInvitationRepository) Create(ctx context.Context, inv domain.TeamInvitation) error {
	const query = `
		INSERT INTO team_invitations (id, team_id, inviter_id, email, role, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		inv.ID,
		inv.TeamID,
		inv.InviterID,
		inv.Email,
		inv.Role,
		inv.Status,
		inv.Message,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return err
}

func (r *PgInvitationRepository) GetByID(ctx context.Context, id string) (domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE id = $1`
	return scanInvitation(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *PgInvitationRepository) GetForUpdate(ctx context.Context, id string) (domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE id = $1 FOR UPDATE`
	return scanInvitation(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *PgInvitationRepository) MarkAccepted(ctx context.Context, id, userID string, at time.Time) error {
	const query = `
		UPDATE team_invitations
		SET status = 'accepted', accepted_by = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	return r.execOne(ctx, query, id, userID, at)
}

func (r *PgInvitationRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	const query = `
		UPDATE team_invitations
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, status, at)
}

func (r *PgInvitationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE team_invitations SET updated_at = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, at)
}

func (r *PgInvitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE lower(email) = lower($1) AND status = 'pending'
		ORDER BY created_at ASC`
	return r.list(ctx, query, email)
}

func (r *PgInvitationRepository) ListPendingByInviter(ctx context.Context, inviterID string) ([]domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE inviter_id = $1 AND status = 'pending'
		ORDER BY created_at ASC`
	return r.list(ctx, query, inviterID)
}

func (r *PgInvitationRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgInvitationRepository) list(ctx context.Context, query string, arg string) ([]domain.TeamInvitation, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.TeamInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func scanInvitation(row pgx.Row) (domain.TeamInvitation, error) {
	var (
		inv        domain.TeamInvitation
		acceptedBy *string
	)
	err := row.Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.InviterID,
		&inv.Email,
		&inv.Role,
		&inv.Status,
		&inv.Message,
		&acceptedBy,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return domain.TeamInvitation{}, err
	}
	if acceptedBy != nil {
		inv.AcceptedBy = *acceptedBy
	}
	return inv, nil
}
