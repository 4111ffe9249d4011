package handlers

import (
	"errors"
	"fmt"
	"time"

	"modbot/bot"
	"modbot/model"
	"modbot/resolution"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandleResolveComponent is phase one of the resolve flow: a staff member
// pressed accept/deny/disregard on an alert message.
func HandleResolveComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, customID string) {
	token, err := resolution.ParseToken(customID)
	if err != nil {
		b.Logger.Warn("malformed resolve component", zap.String("custom_id", customID), zap.Error(err))
		return
	}
	runResolve(s, i, b, token, "")
}

// HandleResolveModal is phase two: the reason modal came back and the
// transition can complete with the collected reason attached.
func HandleResolveModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, customID string) {
	token, err := resolution.ParseToken(customID)
	if err != nil {
		b.Logger.Warn("malformed resolve modal", zap.String("custom_id", customID), zap.Error(err))
		return
	}
	runResolve(s, i, b, token, modalReason(i))
}

func runResolve(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, token resolution.Token, reason string) {
	if i.Member == nil {
		return
	}
	staff := resolution.Staff{ID: i.Member.User.ID, RoleIDs: i.Member.Roles}

	outcome, err := b.Resolver.Resolve(i.GuildID, token, staff, reason)
	switch {
	case errors.Is(err, resolution.ErrNotFound):
		respondNotFound(s, i, b, token)
		return
	case errors.Is(err, resolution.ErrPermissionDenied):
		if respErr := utils.SendEphemeralResponse(s, i,
			fmt.Sprintf("You lack the required capability: %v", err)); respErr != nil {
			b.Logger.Warn("failed to send permission response", zap.Error(respErr))
		}
		return
	case errors.Is(err, resolution.ErrAlreadyResolved):
		removeAlertMessage(s, i, b)
		if respErr := utils.SendEphemeralResponse(s, i,
			"This entry was already resolved by another staff member."); respErr != nil {
			b.Logger.Warn("failed to send already-resolved response", zap.Error(respErr))
		}
		return
	case err != nil:
		b.Logger.Error("resolve failed",
			zap.String("entity_id", token.EntityID),
			zap.String("guild_id", i.GuildID),
			zap.Error(err))
		if respErr := utils.SendEphemeralResponse(s, i,
			"Something went wrong resolving this entry. Try again shortly."); respErr != nil {
			b.Logger.Warn("failed to send error response", zap.Error(respErr))
		}
		return
	}

	if outcome.NeedsReason {
		promptReason(s, i, b, token)
		return
	}

	removeAlertMessage(s, i, b)
	msg := fmt.Sprintf("Marked %s `%s` as %s.", token.Kind, token.EntityID, outcome.Status)
	if outcome.Infraction != nil {
		msg += fmt.Sprintf(" Infraction `%s` issued against <@%s>.", outcome.Infraction.ID, outcome.TargetID)
	}
	if err := utils.SendEphemeralResponse(s, i, msg); err != nil {
		b.Logger.Warn("failed to send resolve response", zap.Error(err))
	}
}

// respondNotFound signals the recoverable stale-element condition and
// schedules deletion of the stale alert after the grace delay. The delay
// tolerates eventual-consistency lag against a concurrent resolution by
// another staff member; it must not delete immediately.
func respondNotFound(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, token resolution.Token) {
	if err := utils.SendEphemeralResponse(s, i,
		"This entry no longer exists. The stale alert will be cleaned up shortly."); err != nil {
		b.Logger.Warn("failed to send not-found response", zap.Error(err))
	}

	if i.Message == nil {
		return
	}
	channelID, messageID := i.Message.ChannelID, i.Message.ID
	b.Scheduler.RunAfter(graceDelay(b.Config, token.Kind), func() {
		if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
			b.Logger.Warn("failed to delete stale alert",
				zap.String("channel_id", channelID),
				zap.String("message_id", messageID),
				zap.Error(err))
		}
	})
}

// promptReason opens the reason modal; submitting it re-enters the resolve
// flow with the reason attached.
func promptReason(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, token resolution.Token) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: token.ModalID(),
			Title:    "Resolution reason",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "reason",
							Label:       "Reason for this decision",
							Style:       discordgo.TextInputParagraph,
							Required:    true,
							MaxLength:   500,
							Placeholder: "Why are you resolving it this way?",
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.Logger.Warn("failed to open reason modal", zap.Error(err))
	}
}

// removeAlertMessage deletes the alert the interaction came from; the entity
// no longer needs staff action.
func removeAlertMessage(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Message == nil {
		return
	}
	if err := s.ChannelMessageDelete(i.Message.ChannelID, i.Message.ID); err != nil {
		b.Logger.Warn("failed to delete alert message",
			zap.String("channel_id", i.Message.ChannelID),
			zap.String("message_id", i.Message.ID),
			zap.Error(err))
	}
}

func modalReason(i *discordgo.InteractionCreate) string {
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == "reason" {
				return input.Value
			}
		}
	}
	return ""
}

// graceDelay returns the stale-alert cleanup delay for an entity kind, with
// the per-kind override taking precedence over the global default.
func graceDelay(cfg *model.Config, kind resolution.EntityKind) time.Duration {
	if override, ok := cfg.Resolution.GraceDelayPerKind[string(kind)]; ok {
		if d, err := utils.ParseDuration(override); err == nil && d > 0 {
			return d
		}
	}
	if cfg.Resolution.GraceDelay != "" {
		if d, err := utils.ParseDuration(cfg.Resolution.GraceDelay); err == nil && d > 0 {
			return d
		}
	}
	return 7 * time.Second
}
