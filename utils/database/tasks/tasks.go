package tasks

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// Upsert inserts a reversal task, replacing any existing task for the same
// (guild, user, kind) so that the latest timed infraction wins. The stored
// record is returned.
func Upsert(db *sqlx.DB, task model.Task) (model.Task, error) {
	// Stored timestamps are UTC so that expiry comparisons are stable.
	task.ExpiresAt = task.ExpiresAt.UTC()
	query := `INSERT INTO tasks (guild_id, user_id, kind, infraction_id, expires_at)
              VALUES (:guild_id, :user_id, :kind, :infraction_id, :expires_at)
              ON CONFLICT (guild_id, user_id, kind) DO UPDATE SET
                  infraction_id = excluded.infraction_id,
                  expires_at = excluded.expires_at`

	if _, err := db.NamedExec(query, task); err != nil {
		return model.Task{}, fmt.Errorf("failed to upsert task: %w", err)
	}

	stored, err := Find(db, task.GuildID, task.UserID, task.Kind)
	if err != nil {
		return model.Task{}, err
	}
	return *stored, nil
}

// Find looks up the task for a (guild, user, kind) triple. A missing task is
// a normal condition and returns nil without error.
func Find(db *sqlx.DB, guildID, userID string, kind model.TaskKind) (*model.Task, error) {
	var task model.Task
	query := "SELECT * FROM tasks WHERE guild_id = ? AND user_id = ? AND kind = ?"
	err := db.Get(&task, query, guildID, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task for user %s in guild %s: %w", userID, guildID, err)
	}
	return &task, nil
}

// Delete removes the task for a (guild, user, kind) triple. Deleting a task
// that no longer exists is a no-op: the scheduler and the platform event
// reactors both cancel tasks and neither cares which one got there first.
func Delete(db *sqlx.DB, guildID, userID string, kind model.TaskKind) error {
	query := "DELETE FROM tasks WHERE guild_id = ? AND user_id = ? AND kind = ?"
	if _, err := db.Exec(query, guildID, userID, kind); err != nil {
		return fmt.Errorf("failed to delete task for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// DeleteAllForUser removes every pending task for a user in a guild. Used
// when a manual ban supersedes whatever reversals were scheduled.
func DeleteAllForUser(db *sqlx.DB, guildID, userID string) error {
	query := "DELETE FROM tasks WHERE guild_id = ? AND user_id = ?"
	if _, err := db.Exec(query, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete tasks for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// Due retrieves tasks whose expiry has passed, oldest first, capped at limit
// so a single tick stays bounded under backlog.
func Due(db *sqlx.DB, now time.Time, limit int) ([]model.Task, error) {
	var due []model.Task
	query := "SELECT * FROM tasks WHERE expires_at <= ? ORDER BY expires_at ASC LIMIT ?"
	if err := db.Select(&due, query, now.UTC(), limit); err != nil {
		return nil, fmt.Errorf("failed to get due tasks: %w", err)
	}
	return due, nil
}

// Count returns the number of pending tasks.
func Count(db *sqlx.DB) (int, error) {
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}
