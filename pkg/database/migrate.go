package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS study_plans (
		id UUID PRIMARY KEY,
		student_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		status TEXT NOT NULL,
		strategy TEXT NOT NULL,
		semester_count INTEGER NOT NULL,
		elective_remaining INTEGER NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, version)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_study_plans_student ON study_plans (student_id, version DESC)`,
}

// Migrate creates the tables the service needs. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
