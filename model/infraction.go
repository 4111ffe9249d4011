package model

import "time"

// InfractionKind is the punitive action applied to a target user.
type InfractionKind string

const (
	InfractionMute InfractionKind = "mute"
	InfractionBan  InfractionKind = "ban"
)

// TaskKind returns the reversal task kind matching this infraction.
func (k InfractionKind) TaskKind() TaskKind {
	if k == InfractionBan {
		return TaskKindBan
	}
	return TaskKindMute
}

// Infraction is a recorded punitive action applied to a user in a guild.
// Timed infractions are referenced by the task scheduled to reverse them.
type Infraction struct {
	ID           string         `db:"id"`
	GuildID      string         `db:"guild_id"`
	UserID       string         `db:"user_id"`
	ModeratorID  string         `db:"moderator_id"`
	Kind         InfractionKind `db:"kind"`
	Reason       string         `db:"reason"`
	DurationSecs int64          `db:"duration_secs"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Timed reports whether the infraction expires and needs a reversal task.
func (i *Infraction) Timed() bool {
	return i.DurationSecs > 0
}

// ExpiresAt returns the reversal time for a timed infraction.
func (i *Infraction) ExpiresAt() time.Time {
	return i.CreatedAt.Add(time.Duration(i.DurationSecs) * time.Second)
}
