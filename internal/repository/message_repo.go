package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"progresshub/internal/db"
	"progresshub/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByTeam(ctx context.Context, teamID string, limit int) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, team_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		message.ID,
		message.TeamID,
		message.UserID,
		message.Content,
		message.CreatedAt,
	)
	return err
}

// ListByTeam devuelve los ultimos limit mensajes en orden cronologico.
func (r *PgMessageRepository) ListByTeam(ctx context.Context, teamID string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, team_id, user_id, content, created_at
		FROM (
			SELECT id, team_id, user_id, content, created_at
			FROM messages
			WHERE team_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.TeamID,
			&msg.UserID,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
