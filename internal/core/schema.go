package core

import (
	"context"
	"fmt"
)

// schemaStatements create the tables used by PgStore. Each statement is
// idempotent so EnsureSchema can run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS integrations (
		id                    UUID PRIMARY KEY,
		name                  TEXT NOT NULL,
		source                JSONB NOT NULL,
		mapping               JSONB NOT NULL,
		sync_interval_seconds BIGINT NOT NULL DEFAULT 0,
		enabled               BOOLEAN NOT NULL DEFAULT TRUE,
		last_synced_at        TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT integrations_name_unique UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS entities (
		key        TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id             UUID PRIMARY KEY,
		integration_id UUID NOT NULL REFERENCES integrations(id) ON DELETE CASCADE,
		status         TEXT NOT NULL,
		record_count   INTEGER NOT NULL DEFAULT 0,
		error          TEXT NOT NULL DEFAULT '',
		result         JSONB,
		started_at     TIMESTAMPTZ NOT NULL,
		finished_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sync_runs_integration_started_idx
		ON sync_runs (integration_id, started_at DESC)`,
}

// EnsureSchema creates missing tables.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
