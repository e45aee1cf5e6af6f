package main

import (
	"context"
	"fmt"
	"os"

	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the config file, database schema, and credential store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Database: %s\n", config.Database.Path)
	r.writePlain("Credential store: %s\n\n", config.Store.Path)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify and YouTube OAuth credentials to %s\n", configPath)
	r.writePlain("2. Run 'playlistbridge auth login --platform spotify' to authorize\n")

	return nil
}
