package reports

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// Add inserts a new pending report.
func Add(db *sqlx.DB, report model.Report) error {
	query := `INSERT INTO reports (id, guild_id, kind, reporter_id, target_id, message_id,
                  channel_id, reason, status, alert_message_id, created_at)
              VALUES (:id, :guild_id, :kind, :reporter_id, :target_id, :message_id,
                  :channel_id, :reason, :status, :alert_message_id, :created_at)`

	if _, err := db.NamedExec(query, report); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetByID retrieves a report scoped to a guild. A missing report returns nil
// without error; the referencing UI element is stale in that case.
func GetByID(db *sqlx.DB, guildID, id string) (*model.Report, error) {
	var report model.Report
	query := "SELECT * FROM reports WHERE id = ? AND guild_id = ?"
	err := db.Get(&report, query, id, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &report, nil
}

// SetAlertMessage records the staff alert message posted for a report.
func SetAlertMessage(db *sqlx.DB, id, messageID string) error {
	query := "UPDATE reports SET alert_message_id = ? WHERE id = ?"
	if _, err := db.Exec(query, messageID, id); err != nil {
		return fmt.Errorf("failed to set alert message for report %s: %w", id, err)
	}
	return nil
}

// Resolve moves a pending report to a terminal status, recording resolver and
// timestamp. The conditional update makes the transition exactly-once: it
// reports false when the report was already resolved by someone else.
func Resolve(db *sqlx.DB, id string, status model.ResolutionStatus, resolverID string, resolvedAt time.Time) (bool, error) {
	query := `UPDATE reports SET status = ?, resolver_id = ?, resolved_at = ?
              WHERE id = ? AND status = ?`

	result, err := db.Exec(query, status, resolverID, resolvedAt, id, model.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve report %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check resolve result for report %s: %w", id, err)
	}
	return affected > 0, nil
}

// AutoResolveForTarget resolves every pending report naming the target in the
// guild and returns the affected reports so their alerts can be removed.
func AutoResolveForTarget(db *sqlx.DB, guildID, targetID, resolverID string, resolvedAt time.Time) ([]model.Report, error) {
	var pending []model.Report
	query := "SELECT * FROM reports WHERE guild_id = ? AND target_id = ? AND status = ?"
	if err := db.Select(&pending, query, guildID, targetID, model.StatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending reports for user %s in guild %s: %w", targetID, guildID, err)
	}

	var resolved []model.Report
	for _, report := range pending {
		ok, err := Resolve(db, report.ID, model.StatusAutoResolved, resolverID, resolvedAt)
		if err != nil {
			return resolved, err
		}
		if ok {
			resolved = append(resolved, report)
		}
	}
	return resolved, nil
}

// CountPending returns the number of reports awaiting review.
func CountPending(db *sqlx.DB) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM reports WHERE status = ?"
	if err := db.Get(&n, query, model.StatusPending); err != nil {
		return 0, fmt.Errorf("failed to count pending reports: %w", err)
	}
	return n, nil
}
