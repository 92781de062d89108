package store

import (
	"context"
	"fmt"
)

// migrations are applied in order on startup; every statement is
// idempotent so restarting the process is safe.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS repositories (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner          TEXT NOT NULL,
		name           TEXT NOT NULL,
		remote_id      BIGINT NOT NULL,
		default_branch TEXT NOT NULL DEFAULT 'main',
		webhook_id     BIGINT NOT NULL DEFAULT 0,
		webhook_secret TEXT NOT NULL DEFAULT '',
		access_token   TEXT NOT NULL DEFAULT '',
		active         BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS repositories_remote_id_idx ON repositories (remote_id)`,
	`CREATE TABLE IF NOT EXISTS tracked_services (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		repository_id    UUID NOT NULL REFERENCES repositories(id),
		manifest_path    TEXT NOT NULL,
		service_name     TEXT NOT NULL,
		status           TEXT NOT NULL,
		current_task     TEXT NOT NULL,
		progress         INT NOT NULL DEFAULT 0,
		last_update      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		next_steps       JSONB NOT NULL DEFAULT '[]',
		dependencies     JSONB NOT NULL DEFAULT '[]',
		priority         TEXT NOT NULL DEFAULT '',
		health_status    TEXT NOT NULL DEFAULT 'Unknown',
		last_commit_date TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (repository_id, manifest_path)
	)`,
	`CREATE TABLE IF NOT EXISTS commit_suggestions (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		service_id     UUID NOT NULL REFERENCES tracked_services(id),
		commit_hash    TEXT NOT NULL,
		commit_message TEXT NOT NULL,
		status         TEXT,
		next_steps     JSONB NOT NULL DEFAULT '[]',
		proposed       JSONB NOT NULL,
		applied        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// at most one unapplied suggestion per (service, commit)
	`CREATE UNIQUE INDEX IF NOT EXISTS commit_suggestions_unapplied_idx
		ON commit_suggestions (service_id, commit_hash) WHERE NOT applied`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		action     TEXT NOT NULL,
		resource   TEXT NOT NULL,
		details    JSONB NOT NULL DEFAULT '{}',
		ip         TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
