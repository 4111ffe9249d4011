// Package moderation applies and reverses punitive actions against the
// platform and records them as infractions.
package moderation

import (
	"fmt"
	"time"

	"modbot/guildconfig"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// maxTimeout is the longest communication restriction Discord accepts.
const maxTimeout = 28 * 24 * time.Hour

// Actions is the platform capability the scheduler and resolution flows act
// through. Every call may fail (target left, missing platform permission);
// callers treat failures as best-effort and log them.
type Actions interface {
	ApplyMute(guildID, userID string, duration time.Duration) error
	RemoveMute(guildID, userID string) error
	ApplyBan(guildID, userID, reason string) error
	RemoveBan(guildID, userID string) error
}

// DiscordActions implements Actions over a discordgo session. Mutes use the
// guild's configured mute role when one is set, plus a communication timeout
// capped at the platform maximum.
type DiscordActions struct {
	session *discordgo.Session
	cache   *guildconfig.Cache
	logger  *zap.Logger
}

// NewDiscordActions creates the live platform collaborator.
func NewDiscordActions(session *discordgo.Session, cache *guildconfig.Cache, logger *zap.Logger) *DiscordActions {
	return &DiscordActions{
		session: session,
		cache:   cache,
		logger:  logger.Named("moderation_actions"),
	}
}

func (a *DiscordActions) ApplyMute(guildID, userID string, duration time.Duration) error {
	cfg, err := a.cache.Get(guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild config for mute: %w", err)
	}

	if cfg.MuteRoleID != "" {
		if err := a.session.GuildMemberRoleAdd(guildID, userID, cfg.MuteRoleID); err != nil {
			return fmt.Errorf("failed to add mute role to user %s: %w", userID, err)
		}
	}

	timeout := duration
	if timeout <= 0 || timeout > maxTimeout {
		timeout = maxTimeout
	}
	until := time.Now().Add(timeout)
	if err := a.session.GuildMemberTimeout(guildID, userID, &until); err != nil {
		return fmt.Errorf("failed to timeout user %s: %w", userID, err)
	}
	return nil
}

func (a *DiscordActions) RemoveMute(guildID, userID string) error {
	cfg, err := a.cache.Get(guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild config for unmute: %w", err)
	}

	if cfg.MuteRoleID != "" {
		if err := a.session.GuildMemberRoleRemove(guildID, userID, cfg.MuteRoleID); err != nil {
			return fmt.Errorf("failed to remove mute role from user %s: %w", userID, err)
		}
	}

	if err := a.session.GuildMemberTimeout(guildID, userID, nil); err != nil {
		return fmt.Errorf("failed to clear timeout for user %s: %w", userID, err)
	}
	return nil
}

func (a *DiscordActions) ApplyBan(guildID, userID, reason string) error {
	if err := a.session.GuildBanCreateWithReason(guildID, userID, reason, 0); err != nil {
		return fmt.Errorf("failed to ban user %s: %w", userID, err)
	}
	return nil
}

func (a *DiscordActions) RemoveBan(guildID, userID string) error {
	if err := a.session.GuildBanDelete(guildID, userID); err != nil {
		return fmt.Errorf("failed to unban user %s: %w", userID, err)
	}
	return nil
}

var _ Actions = (*DiscordActions)(nil)
