package postgre

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is portable between Postgres and SQLite: ids are uuid strings
// generated by the application, and absent optional fields are stored as ''.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 TEXT PRIMARY KEY,
		email              TEXT NOT NULL DEFAULT '',
		username           TEXT NOT NULL DEFAULT '',
		timezone           TEXT NOT NULL DEFAULT 'UTC',
		is_temporary       BOOLEAN NOT NULL DEFAULT FALSE,
		google_calendar_id TEXT NOT NULL DEFAULT '',
		access_token       TEXT NOT NULL DEFAULT '',
		refresh_token      TEXT NOT NULL DEFAULT '',
		token_scope        TEXT NOT NULL DEFAULT '',
		token_expiry       TIMESTAMP NULL,
		created_at         TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS text_inputs (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		original_text         TEXT NOT NULL,
		source_type           TEXT NOT NULL DEFAULT 'manual',
		from_email            TEXT NOT NULL DEFAULT '',
		extracted_events_json TEXT NOT NULL DEFAULT '[]',
		processing_status     TEXT NOT NULL DEFAULT 'completed',
		extraction_status     TEXT NOT NULL DEFAULT 'success',
		extraction_error      TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		text_input_id     TEXT NOT NULL DEFAULT '',
		event_name        TEXT NOT NULL,
		event_description TEXT NOT NULL DEFAULT '',
		start_date        TEXT NOT NULL DEFAULT '',
		start_time        TEXT NOT NULL DEFAULT '',
		start_datetime    TEXT NOT NULL DEFAULT '',
		end_date          TEXT NOT NULL DEFAULT '',
		end_time          TEXT NOT NULL DEFAULT '',
		end_datetime      TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		emoji             TEXT NOT NULL DEFAULT '',
		is_synced         BOOLEAN NOT NULL DEFAULT FALSE,
		google_event_id   TEXT NOT NULL DEFAULT '',
		extracted_at      TIMESTAMP NOT NULL,
		created_at        TIMESTAMP NOT NULL,
		updated_at        TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_text_inputs_user_id ON text_inputs (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events (user_id, start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_text_input_id ON events (text_input_id)`,
}

// Migrate creates the tables the repository needs. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
