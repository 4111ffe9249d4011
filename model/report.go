package model

import "time"

// ResolutionStatus is the lifecycle state of a report or request. A record
// transitions from Pending to exactly one terminal status and is never
// reopened.
type ResolutionStatus string

const (
	StatusPending      ResolutionStatus = "pending"
	StatusAccepted     ResolutionStatus = "accepted"
	StatusDenied       ResolutionStatus = "denied"
	StatusDisregarded  ResolutionStatus = "disregarded"
	StatusAutoResolved ResolutionStatus = "auto_resolved"
)

// Terminal reports whether the status is a terminal state.
func (s ResolutionStatus) Terminal() bool {
	return s != StatusPending
}

// ReportKind distinguishes user reports from message reports.
type ReportKind string

const (
	ReportKindUser    ReportKind = "user"
	ReportKindMessage ReportKind = "message"
)

// Report is a user- or message-flagging incident awaiting staff review.
type Report struct {
	ID             string           `db:"id"`
	GuildID        string           `db:"guild_id"`
	Kind           ReportKind       `db:"kind"`
	ReporterID     string           `db:"reporter_id"`
	TargetID       string           `db:"target_id"`
	MessageID      string           `db:"message_id"`
	ChannelID      string           `db:"channel_id"`
	Reason         string           `db:"reason"`
	Status         ResolutionStatus `db:"status"`
	ResolverID     string           `db:"resolver_id"`
	ResolvedAt     *time.Time       `db:"resolved_at"`
	AlertMessageID string           `db:"alert_message_id"`
	CreatedAt      time.Time        `db:"created_at"`
}
