package handlers

import (
	"modbot/bot"
	"modbot/events"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Register attaches all interaction handlers and platform event reactors to
// the bot's session.
func Register(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Logger.Info("logged in",
			zap.String("username", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})

	events.NewReactor(b.DB, b.Cache, b.Logger).Register(b.Session)
}
