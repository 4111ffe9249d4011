package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modbot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the process configuration: secrets from the environment (with
// .env support for development) and tunables from data/settings.yaml.
func Load() (*model.Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}
	appID := os.Getenv("APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	cfg := &model.Config{
		BotToken: token,
		AppID:    appID,
		LogLevel: logLevel,
		DataDir:  dataDir,
		DBPath:   filepath.Join(dataDir, "modbot.db"),
	}

	if err := loadSettings(cfg, filepath.Join(dataDir, "settings.yaml")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSettings applies data/settings.yaml over the built-in defaults. A
// missing file is fine; the defaults stand.
func loadSettings(cfg *model.Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.batch_size", 100)
	v.SetDefault("resolution.grace_delay", "7s")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to read settings from %s: %w", path, err)
		}
	}

	if err := v.UnmarshalKey("scheduler", &cfg.Scheduler); err != nil {
		return fmt.Errorf("failed to parse scheduler settings: %w", err)
	}
	if err := v.UnmarshalKey("resolution", &cfg.Resolution); err != nil {
		return fmt.Errorf("failed to parse resolution settings: %w", err)
	}
	return nil
}
