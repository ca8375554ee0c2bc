package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/daybrief/internal/feeds"
	"horse.fit/daybrief/internal/settings"
	"horse.fit/daybrief/internal/sources"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, _, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	invalid := 0

	registry, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		invalid++
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", cfg.FeedsFile, err)
	} else {
		fmt.Printf("ok: %s (%d feeds)\n", cfg.FeedsFile, len(registry.Feeds))
	}

	table, err := sources.LoadTable(cfg.SourcesFile)
	if err != nil {
		invalid++
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", cfg.SourcesFile, err)
	} else if cfg.SourcesFile != "" {
		fmt.Printf("ok: %s (%d sources)\n", cfg.SourcesFile, table.Len())
	}

	policy, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		invalid++
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", cfg.SettingsFile, err)
	} else {
		fmt.Printf("ok: %s (floor %s, %d stories/day)\n", cfg.SettingsFile, policy.ReliabilityFloor, policy.StoriesPerDay)
	}

	if invalid > 0 {
		return 1
	}
	return 0
}
