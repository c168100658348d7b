package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema es idempotente: se aplica completo en cada arranque.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 UUID PRIMARY KEY,
		email              TEXT NOT NULL UNIQUE,
		display_name       TEXT NOT NULL DEFAULT '',
		password_hash      TEXT NOT NULL DEFAULT '',
		email_confirmed_at TIMESTAMPTZ,
		confirm_code_hash  TEXT NOT NULL DEFAULT '',
		confirm_expires_at TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS auth_sessions (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		owner_id   UUID NOT NULL UNIQUE REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id        UUID PRIMARY KEY,
		team_id   UUID NOT NULL REFERENCES teams(id),
		user_id   UUID NOT NULL REFERENCES users(id),
		email     TEXT NOT NULL,
		role      TEXT NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL,
		UNIQUE (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS team_invitations (
		id          UUID PRIMARY KEY,
		team_id     UUID NOT NULL REFERENCES teams(id),
		inviter_id  UUID NOT NULL REFERENCES users(id),
		email       TEXT NOT NULL,
		role        TEXT NOT NULL,
		status      TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'cancelled')),
		message     TEXT NOT NULL DEFAULT '',
		accepted_by UUID REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS team_invitations_pending_email
		ON team_invitations (team_id, lower(email)) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS team_invitations_email ON team_invitations (lower(email), status)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          UUID PRIMARY KEY,
		owner_id    UUID NOT NULL REFERENCES users(id),
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		progress    INT NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		due_date    TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id         UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects(id),
		title      TEXT NOT NULL,
		type       TEXT NOT NULL,
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          UUID PRIMARY KEY,
		project_id  UUID NOT NULL REFERENCES projects(id),
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assignee    TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in-progress', 'done')),
		created_by  UUID NOT NULL REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_project ON tasks (project_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL REFERENCES users(id),
		action        TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id   UUID NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         UUID PRIMARY KEY,
		team_id    UUID NOT NULL REFERENCES teams(id),
		user_id    UUID NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate aplica el esquema de tablas e indices.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
