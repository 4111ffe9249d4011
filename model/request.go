package model

import "time"

// Request is a staff-originated proposal for a privileged action that needs
// sign-off from a second staff member before it takes effect.
type Request struct {
	ID             string           `db:"id"`
	GuildID        string           `db:"guild_id"`
	RequesterID    string           `db:"requester_id"`
	TargetID       string           `db:"target_id"`
	Action         InfractionKind   `db:"action"`
	Reason         string           `db:"reason"`
	DurationSecs   int64            `db:"duration_secs"`
	Status         ResolutionStatus `db:"status"`
	ResolverID     string           `db:"resolver_id"`
	ResolvedAt     *time.Time       `db:"resolved_at"`
	AlertMessageID string           `db:"alert_message_id"`
	CreatedAt      time.Time        `db:"created_at"`
}

// Duration returns the proposed action duration, zero meaning permanent.
func (r *Request) Duration() time.Duration {
	return time.Duration(r.DurationSecs) * time.Second
}
