package main

import (
	"log"
	"os"

	"modbot/bot"
	"modbot/config"
	"modbot/handlers"
	"modbot/logger"
	"modbot/utils/database"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zlog.Sync()

	if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		zlog.Fatal("failed to create data directory", zap.Error(err))
	}

	db, err := database.Init(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	b, err := bot.New(cfg, db, zlog)
	if err != nil {
		zlog.Fatal("failed to create bot", zap.Error(err))
	}

	handlers.Register(b)

	if err := b.Run(); err != nil {
		zlog.Fatal("failed to start bot", zap.Error(err))
	}
	b.Close()
}
