package brief

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/daybrief/internal/config"
	"horse.fit/daybrief/internal/feeds"
	"horse.fit/daybrief/internal/ingest"
	"horse.fit/daybrief/internal/pipeline"
	"horse.fit/daybrief/internal/settings"
	"horse.fit/daybrief/internal/sources"
)

// Builder runs the full fetch, normalize, and assemble flow for one day.
type Builder struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// Stats summarizes one build for logging and CLI output.
type Stats struct {
	FeedsFetched int `json:"feeds_fetched"`
	RawRecords   int `json:"raw_records"`
	Items        int `json:"items"`
	Discarded    int `json:"discarded"`
	Clusters     int `json:"clusters"`
}

func NewBuilder(cfg *config.Config, logger zerolog.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// Build fetches every registered feed, normalizes the records, and runs the
// assembly pipeline for the day containing asOf.
func (b *Builder) Build(ctx context.Context, asOf time.Time) (*pipeline.Payload, *Stats, error) {
	registry, err := feeds.LoadRegistry(b.cfg.FeedsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load feed registry: %w", err)
	}

	table, err := sources.LoadTable(b.cfg.SourcesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load source table: %w", err)
	}

	policy, err := settings.Load(b.cfg.SettingsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	fetcher := feeds.NewFetcher(feeds.FetcherOptions{
		Timeout:   time.Duration(b.cfg.FetchTimeoutSeconds) * time.Second,
		MockDir:   b.cfg.MockFeedDir,
		UserAgent: b.cfg.FetchUserAgent,
	}, b.logger)

	documents := fetcher.FetchAll(ctx, registry)

	stats := &Stats{FeedsFetched: len(documents)}
	var items []pipeline.Item
	for _, fd := range documents {
		stats.RawRecords += len(fd.Document.Records)
		for _, rec := range fd.Document.Records {
			item := ingest.Normalize(rec, fd.Feed, *fd.Document, table, asOf)
			if item == nil {
				stats.Discarded++
				continue
			}
			items = append(items, *item)
		}
	}
	stats.Items = len(items)

	payload, err := pipeline.NewService(b.logger).Run(items, policy, asOf)
	if err != nil {
		return nil, stats, err
	}
	stats.Clusters = len(payload.Clusters)

	b.logger.Info().
		Int("feeds", stats.FeedsFetched).
		Int("raw_records", stats.RawRecords).
		Int("items", stats.Items).
		Int("discarded", stats.Discarded).
		Int("clusters", stats.Clusters).
		Str("date", payload.Date).
		Msg("daily brief assembled")

	return payload, stats, nil
}
