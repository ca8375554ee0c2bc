package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/daybrief/internal/feeds"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 60*time.Second, "Overall fetch timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
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

	registry, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load feed registry: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fetcher := feeds.NewFetcher(feeds.FetcherOptions{
		Timeout:   time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		MockDir:   cfg.MockFeedDir,
		UserAgent: cfg.FetchUserAgent,
	}, logger)

	documents := fetcher.FetchAll(ctx, registry)

	type fetchRow struct {
		Feed     string `json:"feed"`
		Kind     string `json:"kind"`
		Records  int    `json:"records"`
		Language string `json:"language,omitempty"`
	}
	rows := make([]fetchRow, 0, len(documents))
	total := 0
	for _, fd := range documents {
		rows = append(rows, fetchRow{
			Feed:     fd.Feed.Name,
			Kind:     fd.Feed.Kind,
			Records:  len(fd.Document.Records),
			Language: fd.Document.Language,
		})
		total += len(fd.Document.Records)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"feeds_registered": len(registry.Feeds),
			"feeds_fetched":    len(documents),
			"records":          total,
			"items":            rows,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
			return 1
		}
		return 0
	}

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, []string{
			truncateForTable(row.Feed, 40),
			row.Kind,
			strconv.Itoa(row.Records),
			row.Language,
		})
	}
	if err := writeTable([]string{"FEED", "KIND", "RECORDS", "LANG"}, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	fmt.Printf("fetched %d/%d feeds, %d records\n", len(documents), len(registry.Feeds), total)
	return 0
}
