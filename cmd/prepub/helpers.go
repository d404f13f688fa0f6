package main

import (
	"net/http"

	"github.com/jlee2843/Peer-Review-2022/internal/biorxiv"
	"github.com/jlee2843/Peer-Review-2022/internal/config"
	"github.com/jlee2843/Peer-Review-2022/internal/harvest"
	"github.com/joho/godotenv"
)

// mustLoadConfig loads the YAML config and environment overrides, exiting
// on invalid values. A .env file in the working directory is honored.
func mustLoadConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newHarvester builds a Harvester whose client follows the config's retry,
// rate, and timeout settings.
func newHarvester(cfg *config.Config) *harvest.Harvester {
	client := biorxiv.NewClient(
		biorxiv.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		biorxiv.WithMaxAttempts(cfg.MaxAttempts),
		biorxiv.WithBaseDelay(cfg.BaseDelay),
		biorxiv.WithRateLimit(cfg.RateLimit),
	)
	return harvest.New(client)
}
