package requests

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// Add inserts a new pending request.
func Add(db *sqlx.DB, request model.Request) error {
	query := `INSERT INTO requests (id, guild_id, requester_id, target_id, action, reason,
                  duration_secs, status, alert_message_id, created_at)
              VALUES (:id, :guild_id, :requester_id, :target_id, :action, :reason,
                  :duration_secs, :status, :alert_message_id, :created_at)`

	if _, err := db.NamedExec(query, request); err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetByID retrieves a request scoped to a guild, nil when absent.
func GetByID(db *sqlx.DB, guildID, id string) (*model.Request, error) {
	var request model.Request
	query := "SELECT * FROM requests WHERE id = ? AND guild_id = ?"
	err := db.Get(&request, query, id, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request %s: %w", id, err)
	}
	return &request, nil
}

// SetAlertMessage records the staff alert message posted for a request.
func SetAlertMessage(db *sqlx.DB, id, messageID string) error {
	query := "UPDATE requests SET alert_message_id = ? WHERE id = ?"
	if _, err := db.Exec(query, messageID, id); err != nil {
		return fmt.Errorf("failed to set alert message for request %s: %w", id, err)
	}
	return nil
}

// Resolve moves a pending request to a terminal status. Reports false when
// the request was already resolved, so double resolution stays a no-op.
func Resolve(db *sqlx.DB, id string, status model.ResolutionStatus, resolverID string, resolvedAt time.Time) (bool, error) {
	query := `UPDATE requests SET status = ?, resolver_id = ?, resolved_at = ?
              WHERE id = ? AND status = ?`

	result, err := db.Exec(query, status, resolverID, resolvedAt, id, model.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve request %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check resolve result for request %s: %w", id, err)
	}
	return affected > 0, nil
}

// AutoResolveForTarget resolves every pending request naming the target in
// the guild and returns the affected requests.
func AutoResolveForTarget(db *sqlx.DB, guildID, targetID, resolverID string, resolvedAt time.Time) ([]model.Request, error) {
	var pending []model.Request
	query := "SELECT * FROM requests WHERE guild_id = ? AND target_id = ? AND status = ?"
	if err := db.Select(&pending, query, guildID, targetID, model.StatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending requests for user %s in guild %s: %w", targetID, guildID, err)
	}

	var resolved []model.Request
	for _, request := range pending {
		ok, err := Resolve(db, request.ID, model.StatusAutoResolved, resolverID, resolvedAt)
		if err != nil {
			return resolved, err
		}
		if ok {
			resolved = append(resolved, request)
		}
	}
	return resolved, nil
}

// CountPending returns the number of requests awaiting sign-off.
func CountPending(db *sqlx.DB) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM requests WHERE status = ?"
	if err := db.Get(&n, query, model.StatusPending); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return n, nil
}
