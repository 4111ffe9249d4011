package moderation

import (
	"time"

	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/infractions"
	"modbot/utils/database/tasks"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Issuer records infractions, applies their platform effect and schedules
// reversal tasks for timed ones.
type Issuer struct {
	db      *sqlx.DB
	actions Actions
	idgen   *utils.IDGenerator
	logger  *zap.Logger

	now func() time.Time
}

// NewIssuer creates an issuer over the shared database and platform actions.
func NewIssuer(db *sqlx.DB, actions Actions, idgen *utils.IDGenerator, logger *zap.Logger) *Issuer {
	return &Issuer{
		db:      db,
		actions: actions,
		idgen:   idgen,
		logger:  logger.Named("issuer"),
		now:     time.Now,
	}
}

// Issue creates the infraction record, applies the action and, when the
// infraction is timed, upserts the reversal task so the latest mute/ban wins.
// The platform call is best-effort: a failed apply is logged and the record
// still stands, matching how reversals are handled.
func (is *Issuer) Issue(guildID, userID, moderatorID string, kind model.InfractionKind, reason string, duration time.Duration) (model.Infraction, error) {
	infraction := model.Infraction{
		ID:           is.idgen.Next(),
		GuildID:      guildID,
		UserID:       userID,
		ModeratorID:  moderatorID,
		Kind:         kind,
		Reason:       reason,
		DurationSecs: int64(duration / time.Second),
		CreatedAt:    is.now().UTC(),
	}

	if err := infractions.Add(is.db, infraction); err != nil {
		return model.Infraction{}, err
	}

	var actionErr error
	switch kind {
	case model.InfractionBan:
		actionErr = is.actions.ApplyBan(guildID, userID, reason)
	default:
		actionErr = is.actions.ApplyMute(guildID, userID, duration)
	}
	if actionErr != nil {
		is.logger.Warn("failed to apply infraction action",
			zap.String("infraction_id", infraction.ID),
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(actionErr))
	}

	if infraction.Timed() {
		task := model.Task{
			GuildID:      guildID,
			UserID:       userID,
			Kind:         kind.TaskKind(),
			InfractionID: infraction.ID,
			ExpiresAt:    infraction.ExpiresAt(),
		}
		if _, err := tasks.Upsert(is.db, task); err != nil {
			return infraction, err
		}
	} else {
		// An untimed action supersedes any reversal still scheduled for
		// the same target and kind.
		if err := tasks.Delete(is.db, guildID, userID, kind.TaskKind()); err != nil {
			return infraction, err
		}
	}

	return infraction, nil
}
