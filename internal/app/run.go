package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/daybrief/internal/brief"
	"horse.fit/daybrief/internal/db"
	"horse.fit/daybrief/internal/globaltime"
	"horse.fit/daybrief/internal/pipeline"
)

func runBuild(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	out := fs.String("out", "", "Write the brief JSON to this file instead of stdout")
	archive := fs.Bool("archive", false, "Archive the brief into Postgres")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall build timeout")

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
	if *archive && !cfg.HasDatabase() {
		fmt.Fprintln(os.Stderr, "--archive requires DATABASE_URL")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	payload, stats, err := brief.NewBuilder(cfg, logger).Build(ctx, globaltime.UTC())
	if err != nil {
		if errors.Is(err, pipeline.ErrNoItems) {
			fmt.Fprintln(os.Stderr, "Build failed: no feed items available")
			return 1
		}
		logger.Error().Err(err).Msg("brief build failed")
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		return 1
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode brief: %v\n", err)
		return 1
	}

	if *archive {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("archive connect failed")
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			return 1
		}
		defer pool.Close()

		compact, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode brief: %v\n", err)
			return 1
		}
		if err := pool.UpsertBriefDay(ctx, payload.Date, payload.GeneratedAt, len(payload.Clusters), compact); err != nil {
			if errors.Is(err, db.ErrEmptyOverwrite) {
				fmt.Fprintln(os.Stderr, "Archive skipped: an empty brief never replaces an archived one")
			} else {
				logger.Error().Err(err).Str("day", payload.Date).Msg("archive brief failed")
				fmt.Fprintf(os.Stderr, "Failed to archive brief: %v\n", err)
				return 1
			}
		} else {
			logger.Info().Str("day", payload.Date).Int("clusters", len(payload.Clusters)).Msg("brief archived")
		}
	}

	if dest := strings.TrimSpace(*out); dest != "" {
		if err := os.WriteFile(dest, append(raw, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dest, err)
			return 1
		}
		fmt.Printf("run date=%s clusters=%d items=%d discarded=%d out=%s\n",
			payload.Date, stats.Clusters, stats.Items, stats.Discarded, dest)
		return 0
	}

	fmt.Println(string(raw))
	return 0
}
