// Package commands defines the application commands the bot registers. The
// surface is deliberately thin: intake for reports and requests plus the
// configuration command.
package commands

import (
	"modbot/model"

	"github.com/bwmarrin/discordgo"
)

// Definitions returns the full command set to register. Every command is
// guild-only: nothing here is meaningful in a DM.
func Definitions() []*discordgo.ApplicationCommand {
	dmPermission := false
	defs := []*discordgo.ApplicationCommand{
		{
			Name: "Report Message",
			Type: discordgo.MessageApplicationCommand,
		},
		{
			Name: "Report User",
			Type: discordgo.UserApplicationCommand,
		},
		{
			Name:        "request-ban",
			Description: "Propose a ban for another staff member to sign off",
			Options:     requestOptions("ban"),
		},
		{
			Name:        "request-mute",
			Description: "Propose a mute for another staff member to sign off",
			Options:     requestOptions("mute"),
		},
		configCommand(),
	}
	for _, def := range defs {
		def.DMPermission = &dmPermission
	}
	return defs
}

func requestOptions(action string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Target of the proposed " + action,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why this " + action + " is warranted",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "How long it should last (30m, 12h, 7d); omit for permanent",
		},
	}
}

func configCommand() *discordgo.ApplicationCommand {
	capabilityChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "resolve reports", Value: model.CapabilityResolveReports},
		{Name: "resolve requests", Value: model.CapabilityResolveRequests},
	}

	return &discordgo.ApplicationCommand{
		Name:        "mod-config",
		Description: "Configure the moderation backend for this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-alert-channel",
				Description: "Channel where report and request alerts are posted",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Alert channel",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-mute-role",
				Description: "Role applied when a mute is issued",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Mute role",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "require-reason",
				Description: "Whether resolving an entity demands a written reason",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "entity",
						Description: "Which entity kind",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "report", Value: "report"},
							{Name: "request", Value: "request"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "required",
						Description: "Require a reason",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "grant",
				Description: "Grant a staff capability to a role",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "capability",
						Description: "Capability to grant",
						Required:    true,
						Choices:     capabilityChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role receiving the capability",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "revoke",
				Description: "Revoke a staff capability from a role",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "capability",
						Description: "Capability to revoke",
						Required:    true,
						Choices:     capabilityChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role losing the capability",
						Required:    true,
					},
				},
			},
		},
	}
}
