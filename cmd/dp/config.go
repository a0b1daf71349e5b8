package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/db"
	"github.com/zulandar/drillplan/internal/images"
	"github.com/zulandar/drillplan/internal/publish"
	"github.com/zulandar/drillplan/internal/publish/discord"
	"github.com/zulandar/drillplan/internal/publish/slack"
)

func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", config.DefaultPath, "path to Drillplan config file")
}

// loadConfig reads the config file. A missing file is only an error when
// --config was given explicitly.
func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.LoadOrDefault(configPath, required)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the catalog backend selected in cfg. The returned close
// function releases the database connection, if any.
func openStore(cfg *config.Config) (catalog.Store, func() error, error) {
	if cfg.Catalog.Backend == config.BackendFile {
		return catalog.NewFileStore(cfg.Catalog.Path), func() error { return nil }, nil
	}

	gormDB, err := db.Open(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return catalog.NewDBStore(gormDB), sqlDB.Close, nil
}

func newFetcher(cfg *config.Config) *images.Fetcher {
	return images.New(images.Opts{
		Timeout: cfg.Images.Timeout,
		Retries: *cfg.Images.Retries,
		Backoff: cfg.Images.Backoff,
	})
}

// adaptersFromConfig creates an adapter for every enabled chat platform.
func adaptersFromConfig(cfg config.PublishConfig) ([]publish.Adapter, error) {
	var adapters []publish.Adapter
	if cfg.Slack.Enabled() {
		a, err := slack.New(slack.AdapterOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.Discord.Enabled() {
		a, err := discord.New(discord.AdapterOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no chat platform configured: set publish.slack or publish.discord")
	}
	return adapters, nil
}
