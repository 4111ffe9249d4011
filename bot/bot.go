package bot

import (
	"fmt"

	"modbot/guildconfig"
	"modbot/model"
	"modbot/moderation"
	"modbot/resolution"
	"modbot/scanner"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Bot wires the session, the persistence layer and the moderation lifecycle
// components together. It owns the scheduler driving expiries.
type Bot struct {
	Session   *discordgo.Session
	DB        *sqlx.DB
	Config    *model.Config
	Cache     *guildconfig.Cache
	Actions   moderation.Actions
	Issuer    *moderation.Issuer
	Resolver  *resolution.Resolver
	Scheduler *Scheduler
	IDGen     *utils.IDGenerator
	Logger    *zap.Logger
}

// New constructs the bot and its component graph.
func New(cfg *model.Config, db *sqlx.DB, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration
	dg.StateEnabled = false

	idgen, err := utils.NewIDGenerator(1)
	if err != nil {
		return nil, err
	}

	cache := guildconfig.New(db, logger)
	actions := moderation.NewDiscordActions(dg, cache, logger)
	issuer := moderation.NewIssuer(db, actions, idgen, logger)
	resolver := resolution.New(db, cache, issuer, logger)

	b := &Bot{
		Session:  dg,
		DB:       db,
		Config:   cfg,
		Cache:    cache,
		Actions:  actions,
		Issuer:   issuer,
		Resolver: resolver,
		IDGen:    idgen,
		Logger:   logger.Named("bot"),
	}

	expiry := scanner.NewExpiryScanner(db, actions, cfg.Scheduler.BatchSize, logger)
	b.Scheduler = NewScheduler(b, expiry, logger)

	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.Config
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

// Close shuts the scheduler down and closes the gateway connection.
func (b *Bot) Close() {
	b.Logger.Info("shutting down")
	b.Scheduler.Stop()
	b.Session.Close()
}
