package main

import (
	"context"
	"os"

	"github.com/playlistbridge/playlistbridge/internal/repositories"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/store"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
	"github.com/playlistbridge/playlistbridge/internal/tokens"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	credStore, err := store.NewBoltStore(config.Store.Path)
	if err != nil {
		logger.Fatalf("failed to open credential store: %v", err)
	}
	defer credStore.Close()

	managers := map[string]*tokens.Manager{}
	clients := map[string]services.PlaylistClient{}

	if provider, err := tokens.NewSpotifyProvider(config.Credentials.Spotify); err == nil {
		manager := tokens.NewManager(services.PlatformSpotify, provider, credStore, logger)
		managers[services.PlatformSpotify] = manager
		clients[services.PlatformSpotify] = services.NewSpotifyClient(manager)
	}

	if provider, err := tokens.NewYouTubeProvider(config.Credentials.YouTube); err == nil {
		manager := tokens.NewManager(services.PlatformYouTube, provider, credStore, logger)
		managers[services.PlatformYouTube] = manager
		clients[services.PlatformYouTube] = services.NewYouTubeClient(manager)
	}

	engine := tasks.NewEngine(tasks.NewRatePacer(config.Migration.SearchesPerSecond), logger)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Warnf("failed to open database, run history disabled: %v", err)
	} else {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		engine.WithReportStore(repositories.NewMigrationRepository(db)).
			WithTrackCache(repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db)))
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		DB:       db,
		Store:    credStore,
		Managers: managers,
		Clients:  clients,
		Engine:   engine,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "playlistbridge",
		Usage:    "Migrate playlists between Spotify & YouTube",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
