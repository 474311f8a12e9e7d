package kafka

import (
	"context"
	"database/sql"
)

// EnsureOutboxTable creates the outbox table when it does not exist yet.
// The worker and the API share this schema.
func EnsureOutboxTable(ctx context.Context, db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS outbox_events (
	id             TEXT PRIMARY KEY,
	request_id     TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id   TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	topic          TEXT NOT NULL,
	payload        BYTEA NOT NULL,
	status         TEXT NOT NULL,
	retry_count    INT NOT NULL DEFAULT 0,
	error_message  TEXT,
	next_retry_at  TIMESTAMPTZ,
	processed_at   TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)
`
	_, err := db.ExecContext(ctx, query)
	return err
}
