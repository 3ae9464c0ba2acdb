package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"plexsync/internal/services"
	"plexsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	// .env values override config.toml for credentials
	godotenv.Load()

	if os.Getenv("PLEXSYNC_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		loadedConfig, err := shared.LoadConfig("config.toml")
		if err != nil {
			logger.Fatalf("failed to load config.toml: %v", err)
		}
		config = loadedConfig
	}

	if url := os.Getenv("PLEX_BASE_URL"); url != "" {
		config.PlexAPI.BaseURL = url
	}
	if token := os.Getenv("PLEX_TOKEN"); token != "" {
		config.PlexAPI.Token = token
	}

	var server services.MediaServer
	if config.PlexAPI.BaseURL != "" && config.PlexAPI.Token != "" {
		server = services.NewPlexService(config.PlexAPI.BaseURL, config.PlexAPI.Token, nil, logger)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Server: server,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "plexsync",
		Usage:    "Reconcile CSV track backlogs against Plex playlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
