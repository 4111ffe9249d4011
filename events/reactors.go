// Package events reconciles the task store and review records with state
// changes observed from the platform: manual bans and unbans, lifted
// communication restrictions, and newly joined guilds.
package events

import (
	"time"

	"modbot/guildconfig"
	"modbot/model"
	"modbot/utils/database/reports"
	"modbot/utils/database/requests"
	"modbot/utils/database/tasks"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Reactor handles externally observed moderation state changes. All of its
// reconciliation is idempotent: racing against the scheduler or a concurrent
// staff action converges to the same end state.
type Reactor struct {
	db     *sqlx.DB
	cache  *guildconfig.Cache
	logger *zap.Logger

	now func() time.Time
}

// NewReactor creates the event reactor.
func NewReactor(db *sqlx.DB, cache *guildconfig.Cache, logger *zap.Logger) *Reactor {
	return &Reactor{
		db:     db,
		cache:  cache,
		logger: logger.Named("events"),
		now:    time.Now,
	}
}

// Register attaches the reactor to the session's gateway events.
func (r *Reactor) Register(s *discordgo.Session) {
	s.AddHandler(r.onGuildBanAdd)
	s.AddHandler(r.onGuildBanRemove)
	s.AddHandler(r.onGuildMemberUpdate)
	s.AddHandler(r.onGuildCreate)
}

// onGuildBanAdd reacts to a ban from any source. Open reports and requests
// naming the target can no longer be meaningfully reviewed, so they are
// auto-resolved under the bot's identity, and any scheduled reversals are
// dropped since the manual ban supersedes them.
func (r *Reactor) onGuildBanAdd(s *discordgo.Session, e *discordgo.GuildBanAdd) {
	resolverID := botUserID(s)
	now := r.now().UTC()

	resolvedReports, err := reports.AutoResolveForTarget(r.db, e.GuildID, e.User.ID, resolverID, now)
	if err != nil {
		r.logger.Error("failed to auto-resolve reports after ban",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
	}
	resolvedRequests, err := requests.AutoResolveForTarget(r.db, e.GuildID, e.User.ID, resolverID, now)
	if err != nil {
		r.logger.Error("failed to auto-resolve requests after ban",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
	}

	if err := tasks.DeleteAllForUser(r.db, e.GuildID, e.User.ID); err != nil {
		r.logger.Error("failed to drop tasks after ban",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
	}

	if len(resolvedReports) == 0 && len(resolvedRequests) == 0 {
		return
	}

	cfg, err := r.cache.Get(e.GuildID)
	if err != nil {
		r.logger.Error("failed to load guild config after ban",
			zap.String("guild_id", e.GuildID), zap.Error(err))
		return
	}
	for _, report := range resolvedReports {
		r.removeAlert(s, cfg.AlertChannelID, report.AlertMessageID)
	}
	for _, request := range resolvedRequests {
		r.removeAlert(s, cfg.AlertChannelID, request.AlertMessageID)
	}

	r.logger.Info("auto-resolved open entities after ban",
		zap.String("guild_id", e.GuildID),
		zap.String("user_id", e.User.ID),
		zap.Int("reports", len(resolvedReports)),
		zap.Int("requests", len(resolvedRequests)))
}

// onGuildBanRemove drops the ban-kind task: the ban was reverted outside the
// scheduler, so the scheduled reversal is moot.
func (r *Reactor) onGuildBanRemove(s *discordgo.Session, e *discordgo.GuildBanRemove) {
	if err := tasks.Delete(r.db, e.GuildID, e.User.ID, model.TaskKindBan); err != nil {
		r.logger.Error("failed to drop ban task after manual unban",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
		return
	}
	r.logger.Debug("dropped ban task after manual unban",
		zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID))
}

// onGuildMemberUpdate drops the mute-kind task when the member's
// communication restriction was lifted outside the scheduler.
func (r *Reactor) onGuildMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.Member == nil || e.User == nil {
		return
	}

	task, err := tasks.Find(r.db, e.GuildID, e.User.ID, model.TaskKindMute)
	if err != nil {
		r.logger.Error("failed to look up mute task",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
		return
	}
	if task == nil {
		return
	}

	if r.stillMuted(e.Member) {
		return
	}

	if err := tasks.Delete(r.db, e.GuildID, e.User.ID, model.TaskKindMute); err != nil {
		r.logger.Error("failed to drop mute task after manual unmute",
			zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID), zap.Error(err))
		return
	}
	r.logger.Info("dropped mute task after manual unmute",
		zap.String("guild_id", e.GuildID), zap.String("user_id", e.User.ID))
}

// stillMuted reports whether the member still carries either mute mechanism.
func (r *Reactor) stillMuted(member *discordgo.Member) bool {
	if member.CommunicationDisabledUntil != nil && member.CommunicationDisabledUntil.After(r.now()) {
		return true
	}
	cfg, err := r.cache.Get(member.GuildID)
	if err != nil {
		// Can't tell; leave the task in place for the scheduler.
		return true
	}
	if cfg.MuteRoleID == "" {
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == cfg.MuteRoleID {
			return true
		}
	}
	return false
}

// onGuildCreate makes first contact with a guild: every known guild gets
// exactly one configuration record.
func (r *Reactor) onGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	if _, err := r.cache.Get(e.ID); err != nil {
		r.logger.Error("failed to ensure guild config",
			zap.String("guild_id", e.ID), zap.Error(err))
		return
	}
	r.logger.Info("guild config ready", zap.String("guild_id", e.ID))
}

func (r *Reactor) removeAlert(s *discordgo.Session, channelID, messageID string) {
	if channelID == "" || messageID == "" {
		return
	}
	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		r.logger.Warn("failed to delete alert message",
			zap.String("channel_id", channelID), zap.String("message_id", messageID), zap.Error(err))
	}
}

func botUserID(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.ID
	}
	return ""
}
