package handlers

import (
	"fmt"

	"modbot/bot"
	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/configdb"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandleConfigCommand applies /mod-config changes. Every write path here
// invalidates the guild's cache entry through the configdb hook, so the next
// read reflects the change.
func HandleConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || !memberIsGuildAdmin(i.Member) {
		if err := utils.SendEphemeralResponse(s, i, "Only server administrators can change moderation settings."); err != nil {
			b.Logger.Warn("failed to respond to config command", zap.Error(err))
		}
		return
	}

	cfg, err := b.Cache.Get(i.GuildID)
	if err != nil {
		b.Logger.Error("failed to load guild config", zap.String("guild_id", i.GuildID), zap.Error(err))
		respondGenericFailure(s, i, b)
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		optionMap[opt.Name] = opt
	}

	var reply string
	switch sub.Name {
	case "set-alert-channel":
		updated := *cfg
		updated.AlertChannelID = optionMap["channel"].ChannelValue(s).ID
		err = configdb.Update(b.DB, &updated, b.Cache)
		reply = fmt.Sprintf("Alert channel set to <#%s>.", updated.AlertChannelID)
	case "set-mute-role":
		updated := *cfg
		updated.MuteRoleID = optionMap["role"].RoleValue(s, i.GuildID).ID
		err = configdb.Update(b.DB, &updated, b.Cache)
		reply = fmt.Sprintf("Mute role set to <@&%s>.", updated.MuteRoleID)
	case "require-reason":
		updated := *cfg
		required := optionMap["required"].BoolValue()
		switch optionMap["entity"].StringValue() {
		case "report":
			updated.RequireReasonReport = required
		default:
			updated.RequireReasonRequest = required
		}
		err = configdb.Update(b.DB, &updated, b.Cache)
		reply = fmt.Sprintf("Reason requirement for %s set to %t.", optionMap["entity"].StringValue(), required)
	case "grant":
		grant := model.PermissionGrant{
			GuildID:    i.GuildID,
			Capability: optionMap["capability"].StringValue(),
			RoleID:     optionMap["role"].RoleValue(s, i.GuildID).ID,
		}
		err = configdb.AddGrant(b.DB, grant, b.Cache)
		reply = fmt.Sprintf("Granted `%s` to <@&%s>.", grant.Capability, grant.RoleID)
	case "revoke":
		grant := model.PermissionGrant{
			GuildID:    i.GuildID,
			Capability: optionMap["capability"].StringValue(),
			RoleID:     optionMap["role"].RoleValue(s, i.GuildID).ID,
		}
		err = configdb.RemoveGrant(b.DB, grant, b.Cache)
		reply = fmt.Sprintf("Revoked `%s` from <@&%s>.", grant.Capability, grant.RoleID)
	default:
		return
	}

	if err != nil {
		b.Logger.Error("failed to update guild config",
			zap.String("guild_id", i.GuildID), zap.String("subcommand", sub.Name), zap.Error(err))
		respondGenericFailure(s, i, b)
		return
	}

	if err := utils.SendEphemeralResponse(s, i, reply); err != nil {
		b.Logger.Warn("failed to respond to config command", zap.Error(err))
	}
}

func memberIsGuildAdmin(member *discordgo.Member) bool {
	return member.Permissions&discordgo.PermissionAdministrator != 0
}
