package configdb

import (
	"database/sql"
	"errors"
	"fmt"

	"modbot/model"

	"github.com/jmoiron/sqlx"
)

// Invalidator is the cache hook every write path notifies. Writes invalidate
// the guild's cached entry before reporting success, so a stale copy is never
// served after a completed write.
type Invalidator interface {
	Invalidate(guildID string)
}

// Get loads a guild's configuration and permission grants. A missing guild
// returns nil without error; callers decide whether to create a default row.
func Get(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	var cfg model.GuildConfig
	err := db.Get(&cfg, "SELECT * FROM guild_configs WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config for %s: %w", guildID, err)
	}

	if err := db.Select(&cfg.Grants,
		"SELECT * FROM permission_grants WHERE guild_id = ?", guildID); err != nil {
		return nil, fmt.Errorf("failed to get permission grants for %s: %w", guildID, err)
	}
	return &cfg, nil
}

// EnsureExists creates a default-valued configuration row for the guild if
// none exists. Safe to call repeatedly.
func EnsureExists(db *sqlx.DB, guildID string) error {
	query := "INSERT INTO guild_configs (guild_id) VALUES (?) ON CONFLICT (guild_id) DO NOTHING"
	if _, err := db.Exec(query, guildID); err != nil {
		return fmt.Errorf("failed to ensure guild config for %s: %w", guildID, err)
	}
	return nil
}

// Update persists the mutable fields of a guild's configuration.
func Update(db *sqlx.DB, cfg *model.GuildConfig, inv Invalidator) error {
	query := `UPDATE guild_configs SET
                  require_reason_report = :require_reason_report,
                  require_reason_request = :require_reason_request,
                  mute_role_id = :mute_role_id,
                  alert_channel_id = :alert_channel_id,
                  log_channel_id = :log_channel_id
              WHERE guild_id = :guild_id`

	if _, err := db.NamedExec(query, cfg); err != nil {
		return fmt.Errorf("failed to update guild config for %s: %w", cfg.GuildID, err)
	}
	inv.Invalidate(cfg.GuildID)
	return nil
}

// AddGrant grants a capability to a role. Granting an existing pair is a
// no-op.
func AddGrant(db *sqlx.DB, grant model.PermissionGrant, inv Invalidator) error {
	query := `INSERT INTO permission_grants (guild_id, capability, role_id)
              VALUES (:guild_id, :capability, :role_id)
              ON CONFLICT (guild_id, capability, role_id) DO NOTHING`

	if _, err := db.NamedExec(query, grant); err != nil {
		return fmt.Errorf("failed to add permission grant for %s: %w", grant.GuildID, err)
	}
	inv.Invalidate(grant.GuildID)
	return nil
}

// RemoveGrant revokes a capability from a role. Absence is not an error.
func RemoveGrant(db *sqlx.DB, grant model.PermissionGrant, inv Invalidator) error {
	query := `DELETE FROM permission_grants
              WHERE guild_id = :guild_id AND capability = :capability AND role_id = :role_id`

	if _, err := db.NamedExec(query, grant); err != nil {
		return fmt.Errorf("failed to remove permission grant for %s: %w", grant.GuildID, err)
	}
	inv.Invalidate(grant.GuildID)
	return nil
}
