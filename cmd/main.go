package main

import (
	"context"
	"errors"
	"os"

	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	apiClient := services.NewClient(config.Server.BaseURL, config.Server.Token, nil)

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    apiClient,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "collectz",
		Usage:    "Track and import your comic collection",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
