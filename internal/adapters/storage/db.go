package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		brigade_id TEXT NOT NULL,
		name TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT '',
		dlb_member_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_member_dlb_active
		ON member(brigade_id, dlb_member_id)
		WHERE status = 'active' AND dlb_member_id != 0;

	CREATE TABLE IF NOT EXISTS attendance_record (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		muster_id INTEGER NOT NULL,
		event_date TEXT NOT NULL,
		event_type TEXT NOT NULL,
		status TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		truck TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (member_id) REFERENCES member(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_natural_key
		ON attendance_record(member_id, muster_id);

	CREATE TABLE IF NOT EXISTS sync_state (
		brigade_id TEXT PRIMARY KEY,
		last_sync_at TEXT,
		sync_from_date TEXT,
		sync_to_date TEXT,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS sync_log (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS calendar_event (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		event_date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_event_date
		ON calendar_event(type, event_date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
