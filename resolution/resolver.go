// Package resolution governs the review lifecycle of reports and requests:
// Pending -> {Accepted, Denied, Disregarded, AutoResolved}, one transition
// per entity, ever.
package resolution

import (
	"fmt"
	"time"

	"modbot/guildconfig"
	"modbot/model"
	"modbot/moderation"
	"modbot/utils"
	"modbot/utils/database/reports"
	"modbot/utils/database/requests"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Staff identifies the acting staff member and the roles they hold.
type Staff struct {
	ID      string
	RoleIDs []string
}

// Outcome describes a completed (or deferred) resolve call. When NeedsReason
// is set the transition did not happen yet; the caller must collect a reason
// and re-enter Resolve with it.
type Outcome struct {
	Status         model.ResolutionStatus
	NeedsReason    bool
	AlertChannelID string
	AlertMessageID string
	TargetID       string
	Infraction     *model.Infraction
}

// Resolver applies staff decisions to reports and requests.
type Resolver struct {
	db     *sqlx.DB
	cache  *guildconfig.Cache
	issuer *moderation.Issuer
	logger *zap.Logger

	now func() time.Time
}

// New creates a resolver over the shared database, config cache and issuer.
func New(db *sqlx.DB, cache *guildconfig.Cache, issuer *moderation.Issuer, logger *zap.Logger) *Resolver {
	return &Resolver{
		db:     db,
		cache:  cache,
		issuer: issuer,
		logger: logger.Named("resolution"),
		now:    time.Now,
	}
}

// Resolve looks up the entity the token names, verifies the acting staff
// member's capability, enforces the guild's reason requirement, and performs
// the exactly-once terminal transition plus its side effects.
//
// Error taxonomy: ErrNotFound (stale UI element), ErrPermissionDenied
// (wrapped with the missing capability, nothing mutated), ErrAlreadyResolved
// (another staff member won the race, nothing mutated). Anything else is a
// persistence failure.
func (r *Resolver) Resolve(guildID string, token Token, staff Staff, reason string) (*Outcome, error) {
	cfg, err := r.cache.Get(guildID)
	if err != nil {
		return nil, err
	}

	switch token.Kind {
	case EntityRequest:
		return r.resolveRequest(cfg, token, staff, reason)
	default:
		return r.resolveReport(cfg, token, staff, reason)
	}
}

func (r *Resolver) resolveReport(cfg *model.GuildConfig, token Token, staff Staff, reason string) (*Outcome, error) {
	report, err := reports.GetByID(r.db, cfg.GuildID, token.EntityID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report %s: %w", token.EntityID, ErrNotFound)
	}

	if !utils.HasCapability(staff.RoleIDs, cfg.GrantedRoles(model.CapabilityResolveReports)) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, model.CapabilityResolveReports)
	}

	outcome := &Outcome{
		AlertChannelID: cfg.AlertChannelID,
		AlertMessageID: report.AlertMessageID,
		TargetID:       report.TargetID,
	}

	if r.reasonRequired(cfg, token) && reason == "" {
		outcome.NeedsReason = true
		return outcome, nil
	}

	ok, err := reports.Resolve(r.db, report.ID, token.Action.Status(), staff.ID, r.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("report %s: %w", report.ID, ErrAlreadyResolved)
	}

	outcome.Status = token.Action.Status()
	r.logger.Info("report resolved",
		zap.String("report_id", report.ID),
		zap.String("guild_id", cfg.GuildID),
		zap.String("status", string(outcome.Status)),
		zap.String("resolver_id", staff.ID))
	return outcome, nil
}

func (r *Resolver) resolveRequest(cfg *model.GuildConfig, token Token, staff Staff, reason string) (*Outcome, error) {
	request, err := requests.GetByID(r.db, cfg.GuildID, token.EntityID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request %s: %w", token.EntityID, ErrNotFound)
	}

	if !utils.HasCapability(staff.RoleIDs, cfg.GrantedRoles(model.CapabilityResolveRequests)) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, model.CapabilityResolveRequests)
	}

	outcome := &Outcome{
		AlertChannelID: cfg.AlertChannelID,
		AlertMessageID: request.AlertMessageID,
		TargetID:       request.TargetID,
	}

	if r.reasonRequired(cfg, token) && reason == "" {
		outcome.NeedsReason = true
		return outcome, nil
	}

	ok, err := requests.Resolve(r.db, request.ID, token.Action.Status(), staff.ID, r.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request %s: %w", request.ID, ErrAlreadyResolved)
	}
	outcome.Status = token.Action.Status()

	if token.Action == ActionAccept {
		infraction, err := r.issuer.Issue(cfg.GuildID, request.TargetID, request.RequesterID,
			request.Action, request.Reason, request.Duration())
		if err != nil {
			return nil, err
		}
		outcome.Infraction = &infraction
	}

	r.logger.Info("request resolved",
		zap.String("request_id", request.ID),
		zap.String("guild_id", cfg.GuildID),
		zap.String("status", string(outcome.Status)),
		zap.String("resolver_id", staff.ID))
	return outcome, nil
}

// reasonRequired applies the guild's reason policy: disregard never needs a
// reason, denied requests need one when the guild demands it, and report
// decisions need one when the guild demands it.
func (r *Resolver) reasonRequired(cfg *model.GuildConfig, token Token) bool {
	if token.Action == ActionDisregard {
		return false
	}
	if token.Kind == EntityRequest {
		return token.Action == ActionDeny && cfg.RequireReasonRequest
	}
	return cfg.RequireReasonReport
}
