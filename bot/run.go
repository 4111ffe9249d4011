package bot

import (
	"os"
	"os/signal"
	"syscall"

	"modbot/commands"

	"go.uber.org/zap"
)

// Run opens the gateway connection, registers the command surface and blocks
// until the process receives a termination signal.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return err
	}

	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, "", commands.Definitions()); err != nil {
		b.Logger.Error("failed to register commands", zap.Error(err))
	}

	b.Scheduler.Start()
	b.Logger.Info("bot is running")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	return nil
}
