package handlers

import (
	"modbot/bot"
	"modbot/resolution"

	"github.com/bwmarrin/discordgo"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "Report Message":
			HandleMessageReport(s, i, b)
		case "Report User":
			HandleUserReport(s, i, b)
		case "request-ban":
			HandleRequestCommand(s, i, b)
		case "request-mute":
			HandleRequestCommand(s, i, b)
		case "mod-config":
			HandleConfigCommand(s, i, b)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if resolution.IsResolveComponent(customID) {
			HandleResolveComponent(s, i, b, customID)
		}
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if resolution.IsReasonModal(customID) {
			HandleResolveModal(s, i, b, customID)
		}
	}
}
