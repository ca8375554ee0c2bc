package pipeline

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/daybrief/internal/settings"
)

// ErrNoItems is returned when a run receives zero normalized items. Total
// ingestion failure must surface loudly instead of producing an empty but
// well-formed payload.
var ErrNoItems = errors.New("no items to process")

// Service runs the batch transform from normalized items to the ranked daily
// payload. The pipeline itself does no I/O; asOf is the only ambient input.
type Service struct {
	logger zerolog.Logger
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger}
}

// Run executes dedup, clustering, best-article selection and ranking over one
// snapshot of normalized items. Given identical items, policy and asOf the
// output is identical.
func (s *Service) Run(items []Item, policy settings.Policy, asOf time.Time) (*Payload, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	deduped := Dedupe(items)
	clusters := BuildClusters(deduped, DefaultClusterOptions())

	ranked := make([]RankedCluster, 0, len(clusters))
	fallbacks := 0
	for _, cluster := range clusters {
		pick := SelectBest(cluster, policy, asOf)
		if pick.Fallback {
			fallbacks++
			s.logger.Warn().
				Str("cluster_title", cluster.Title).
				Str("domain", pick.Item.SourceDomain).
				Msg("no candidate passed policy; using fallback pick")
		}
		ranked = append(ranked, RankedCluster{Cluster: cluster, Best: pick})
	}

	ranked = RankClusters(ranked, policy, asOf)

	s.logger.Info().
		Int("items_in", len(items)).
		Int("items_deduped", len(deduped)).
		Int("clusters", len(clusters)).
		Int("clusters_ranked", len(ranked)).
		Int("fallback_picks", fallbacks).
		Msg("pipeline run complete")

	return buildPayload(ranked, asOf), nil
}
