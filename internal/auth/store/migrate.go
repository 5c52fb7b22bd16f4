package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the users table if missing. Kept as plain DDL so small
// deployments need no external migration tooling.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                     BIGSERIAL PRIMARY KEY,
			email                  TEXT NOT NULL UNIQUE,
			name                   TEXT,
			hashed_password        TEXT NOT NULL,
			salt                   TEXT NOT NULL,
			reset_token            TEXT,
			reset_token_expires_at TIMESTAMPTZ,
			roles                  TEXT,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token) WHERE reset_token IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("create reset token index: %w", err)
	}
	return nil
}
