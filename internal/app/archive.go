package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/daybrief/internal/db"
)

func runBrief(args []string) int {
	fs := flag.NewFlagSet("brief", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	date := fs.String("date", "", "Archived day to show (YYYY-MM-DD)")
	timeout := fs.Duration("timeout", 10*time.Second, "Database timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	day, err := parseUTCDate(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date: %v\n", err)
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if !cfg.HasDatabase() {
		fmt.Fprintln(os.Stderr, "brief requires DATABASE_URL")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("brief connect failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	record, err := pool.GetBriefDay(ctx, day.Format("2006-01-02"))
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			fmt.Fprintf(os.Stderr, "No brief archived for %s\n", day.Format("2006-01-02"))
			return 1
		}
		logger.Error().Err(err).Msg("load archived brief failed")
		fmt.Fprintf(os.Stderr, "Failed to load brief: %v\n", err)
		return 1
	}

	var pretty any
	if err := json.Unmarshal(record.Payload, &pretty); err != nil {
		fmt.Fprintf(os.Stderr, "Archived payload is not valid JSON: %v\n", err)
		return 1
	}
	if err := printJSON(pretty); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		return 1
	}
	return 0
}

func runBriefs(args []string) int {
	fs := flag.NewFlagSet("briefs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	limit := fs.Int("limit", 30, "Maximum days to list")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 10*time.Second, "Database timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *limit <= 0 || *limit > 365 {
		fmt.Fprintln(os.Stderr, "--limit must be between 1 and 365")
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if !cfg.HasDatabase() {
		fmt.Fprintln(os.Stderr, "briefs requires DATABASE_URL")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("briefs connect failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	summaries, err := pool.ListBriefDays(ctx, *limit)
	if err != nil {
		logger.Error().Err(err).Msg("list archived briefs failed")
		fmt.Fprintf(os.Stderr, "Failed to list briefs: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": summaries}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Day,
			formatUTCTimestamp(s.GeneratedAt),
			strconv.Itoa(s.ClusterCount),
		})
	}
	if err := writeTable([]string{"DAY", "GENERATED", "CLUSTERS"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
