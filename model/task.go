package model

import "time"

// TaskKind identifies which reversal a task performs.
type TaskKind string

const (
	TaskKindMute TaskKind = "mute"
	TaskKindBan  TaskKind = "ban"
)

// Task represents a pending reversal of a timed infraction. At most one task
// exists per (guild, user, kind); a newer timed infraction for the same pair
// replaces the old task.
type Task struct {
	ID           int64     `db:"id"`
	GuildID      string    `db:"guild_id"`
	UserID       string    `db:"user_id"`
	Kind         TaskKind  `db:"kind"`
	InfractionID string    `db:"infraction_id"`
	ExpiresAt    time.Time `db:"expires_at"`
}
