package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/daybrief/internal/db"
	"horse.fit/daybrief/internal/feeds"
	"horse.fit/daybrief/internal/settings"
	"horse.fit/daybrief/internal/sources"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	registry, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	if _, err := sources.LoadTable(cfg.SourcesFile); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	if _, err := settings.Load(cfg.SettingsFile); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	if cfg.HasDatabase() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("health check failed")
			fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
			return 1
		}
		defer pool.Close()
		fmt.Println("ok: database ping successful")
	} else {
		fmt.Println("ok: running file-only (DATABASE_URL not set)")
	}

	logger.Info().Int("feeds", len(registry.Feeds)).Msg("health check passed")
	fmt.Printf("ok: %d feeds registered\n", len(registry.Feeds))
	return 0
}
