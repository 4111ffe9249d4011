package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the moderation database and ensures every table exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CreateTables creates the moderation schema if it is missing.
func CreateTables(db *sqlx.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS guild_configs (
        guild_id TEXT NOT NULL PRIMARY KEY,
        require_reason_report INTEGER NOT NULL DEFAULT 0,
        require_reason_request INTEGER NOT NULL DEFAULT 1,
        mute_role_id TEXT NOT NULL DEFAULT '',
        alert_channel_id TEXT NOT NULL DEFAULT '',
        log_channel_id TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS permission_grants (
        guild_id TEXT NOT NULL,
        capability TEXT NOT NULL,
        role_id TEXT NOT NULL,
        PRIMARY KEY (guild_id, capability, role_id)
    );

    CREATE TABLE IF NOT EXISTS tasks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        infraction_id TEXT NOT NULL,
        expires_at DATETIME NOT NULL,
        UNIQUE (guild_id, user_id, kind)
    );

    CREATE TABLE IF NOT EXISTS infractions (
        id TEXT NOT NULL PRIMARY KEY,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        moderator_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        reason TEXT NOT NULL DEFAULT '',
        duration_secs INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS reports (
        id TEXT NOT NULL PRIMARY KEY,
        guild_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        reporter_id TEXT NOT NULL,
        target_id TEXT NOT NULL,
        message_id TEXT NOT NULL DEFAULT '',
        channel_id TEXT NOT NULL DEFAULT '',
        reason TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL DEFAULT 'pending',
        resolver_id TEXT NOT NULL DEFAULT '',
        resolved_at DATETIME,
        alert_message_id TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS requests (
        id TEXT NOT NULL PRIMARY KEY,
        guild_id TEXT NOT NULL,
        requester_id TEXT NOT NULL,
        target_id TEXT NOT NULL,
        action TEXT NOT NULL,
        reason TEXT NOT NULL DEFAULT '',
        duration_secs INTEGER NOT NULL DEFAULT 0,
        status TEXT NOT NULL DEFAULT 'pending',
        resolver_id TEXT NOT NULL DEFAULT '',
        resolved_at DATETIME,
        alert_message_id TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_tasks_expires_at ON tasks (expires_at);
    CREATE INDEX IF NOT EXISTS idx_reports_guild_target ON reports (guild_id, target_id, status);
    CREATE INDEX IF NOT EXISTS idx_requests_guild_target ON requests (guild_id, target_id, status);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create moderation tables: %w", err)
	}
	return nil
}
