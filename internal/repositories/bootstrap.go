package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Bootstrap creates the canonical schema when it does not exist yet, so a
// fresh database is usable without a separate migration step.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY,
		username VARCHAR(20) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id UUID PRIMARY KEY,
		recipient_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"read" BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS messages_recipient_created_idx
		ON messages (recipient_id, created_at DESC);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
