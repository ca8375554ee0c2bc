package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"horse.fit/daybrief/internal/db"
	"horse.fit/daybrief/internal/sources"
)

func runSources(args []string) int {
	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := addEnvFlag(fs)
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	sync := fs.Bool("sync", false, "Push the YAML source table into Postgres")
	timeout := fs.Duration("timeout", 15*time.Second, "Database timeout")

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

	table, err := sources.LoadTable(cfg.SourcesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load source table: %v\n", err)
		return 1
	}
	records := table.Records()

	if *sync {
		if !cfg.HasDatabase() {
			fmt.Fprintln(os.Stderr, "--sync requires DATABASE_URL")
			return 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("sources connect failed")
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			return 1
		}
		defer pool.Close()

		synced := 0
		for _, meta := range records {
			record, err := sourceRecordFromMeta(meta)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to encode source %s: %v\n", meta.Domain, err)
				return 1
			}
			if err := pool.UpsertSource(ctx, record); err != nil {
				logger.Error().Err(err).Str("domain", meta.Domain).Msg("source sync failed")
				fmt.Fprintf(os.Stderr, "Failed to sync source %s: %v\n", meta.Domain, err)
				return 1
			}
			synced++
		}
		logger.Info().Int("sources", synced).Msg("source table synced")
		fmt.Printf("synced %d sources into Postgres\n", synced)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": records}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(records))
	for _, meta := range records {
		rows = append(rows, []string{
			meta.Domain,
			strconv.Itoa(meta.ReliabilityScore),
			sources.BucketReliability(meta.ReliabilityScore),
			meta.Region,
			strings.Join(meta.Tags, ","),
		})
	}
	if err := writeTable([]string{"DOMAIN", "SCORE", "TIER", "REGION", "TAGS"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}

func sourceRecordFromMeta(meta sources.Meta) (db.SourceRecord, error) {
	tags, err := json.Marshal(meta.Tags)
	if err != nil {
		return db.SourceRecord{}, err
	}
	record := db.SourceRecord{
		Domain:           meta.Domain,
		ReliabilityScore: meta.ReliabilityScore,
		Region:           meta.Region,
		Tags:             tags,
	}
	if strings.TrimSpace(meta.BiasLabel) != "" {
		label := meta.BiasLabel
		record.BiasLabel = &label
	}
	return record, nil
}
