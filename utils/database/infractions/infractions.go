package infractions

import (
	"fmt"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// Add inserts a new infraction record.
func Add(db *sqlx.DB, infraction model.Infraction) error {
	query := `INSERT INTO infractions (id, guild_id, user_id, moderator_id, kind, reason,
                  duration_secs, created_at)
              VALUES (:id, :guild_id, :user_id, :moderator_id, :kind, :reason,
                  :duration_secs, :created_at)`

	if _, err := db.NamedExec(query, infraction); err != nil {
		return fmt.Errorf("failed to insert infraction: %w", err)
	}
	return nil
}

// GetByUser retrieves a user's infraction history in a guild, newest first.
func GetByUser(db *sqlx.DB, guildID, userID string) ([]model.Infraction, error) {
	var records []model.Infraction
	query := "SELECT * FROM infractions WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC"
	if err := db.Select(&records, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to get infractions for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}
