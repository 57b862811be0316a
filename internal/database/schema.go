package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates the triage tables. Statements are idempotent so startup
// can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS model_states (
		id            BIGSERIAL PRIMARY KEY,
		params        JSONB NOT NULL,
		feature_names TEXT[] NOT NULL,
		sample_count  INTEGER NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT FALSE,
		trained_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_model_states_active
		ON model_states (is_active) WHERE is_active`,

	`CREATE TABLE IF NOT EXISTS issue_memories (
		id                    BIGSERIAL PRIMARY KEY,
		ward_id               INTEGER NOT NULL,
		issue_category        TEXT NOT NULL,
		dept_id               TEXT NOT NULL,
		month                 INTEGER NOT NULL,
		year                  INTEGER NOT NULL,
		occurrence_count      INTEGER NOT NULL DEFAULT 1,
		avg_severity_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
		keywords              TEXT[] NOT NULL DEFAULT '{}',
		sample_ticket_ids     TEXT[] NOT NULL DEFAULT '{}',
		last_seen_description TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (ward_id, issue_category, month, year)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issue_memories_ward_month
		ON issue_memories (ward_id, month)`,

	`CREATE TABLE IF NOT EXISTS ticket_history (
		ticket_id      TEXT PRIMARY KEY,
		ward_id        INTEGER NOT NULL,
		issue_category TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_history_pair
		ON ticket_history (ward_id, issue_category, created_at)`,
}

// EnsureSchema creates all triage tables and indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
