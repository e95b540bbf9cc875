package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		first_submission_at INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id),
		timestamp INTEGER NOT NULL,
		easy INTEGER NOT NULL,
		medium INTEGER NOT NULL,
		hard INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stats_user_time ON stats (user_id, timestamp DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS daily_progress (
		user_id TEXT NOT NULL REFERENCES users(id),
		date TEXT NOT NULL,
		easy INTEGER NOT NULL DEFAULT 0,
		medium INTEGER NOT NULL DEFAULT 0,
		hard INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_progress_date ON daily_progress (date)`,
	`CREATE TABLE IF NOT EXISTS refresh_bans (
		ip TEXT NOT NULL,
		username TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		PRIMARY KEY (ip, username)
	)`,
}

// InitTables creates every table used by the tracker. It is idempotent.
func InitTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
