package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payload is the output document consumed by the presentation and archive
// collaborators. Field names and nesting are a compatibility contract: do not
// rename them.
type Payload struct {
	Date        string           `json:"date"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Clusters    []PayloadCluster `json:"clusters"`
}

type PayloadCluster struct {
	ClusterID       string             `json:"cluster_id"`
	RankScore       float64            `json:"rank_score"`
	Priority        string             `json:"priority"`
	Title           string             `json:"title"`
	TopicTags       []string           `json:"topic_tags"`
	UpdatedAt       time.Time          `json:"updated_at"`
	CoverageBreadth string             `json:"coverage_breadth"`
	BestArticle     PayloadBestArticle `json:"best_article"`
	Articles        []Item             `json:"articles"`
}

type PayloadBestArticle struct {
	URL          string               `json:"url"`
	SourceDomain string               `json:"source_domain"`
	Labels       Labels               `json:"labels"`
	TraceSummary string               `json:"trace_summary"`
	Alternatives []PayloadAlternative `json:"alternatives,omitempty"`
}

type PayloadAlternative struct {
	URL          string `json:"url"`
	SourceDomain string `json:"source_domain"`
	Reason       string `json:"reason"`
}

func buildPayload(ranked []RankedCluster, asOf time.Time) *Payload {
	day := asOf.UTC().Format("2006-01-02")

	clusters := make([]PayloadCluster, 0, len(ranked))
	for _, rc := range ranked {
		clusters = append(clusters, PayloadCluster{
			ClusterID:       clusterID(rc.Cluster, day),
			RankScore:       rc.RankScore,
			Priority:        rc.Priority,
			Title:           rc.Cluster.Title,
			TopicTags:       rc.TopicTags,
			UpdatedAt:       rc.Cluster.UpdatedAt,
			CoverageBreadth: rc.CoverageBreadth,
			BestArticle: PayloadBestArticle{
				URL:          rc.Best.Item.URL,
				SourceDomain: rc.Best.Item.SourceDomain,
				Labels:       rc.Best.Item.Labels,
				TraceSummary: rc.Best.TraceSummary,
				Alternatives: payloadAlternatives(rc.Best.Alternatives),
			},
			Articles: rc.Cluster.Articles,
		})
	}

	return &Payload{
		Date:        day,
		GeneratedAt: asOf.UTC(),
		Clusters:    clusters,
	}
}

// clusterID is a content-derived identifier: stable across reruns of the same
// day's snapshot, unlike a sequence number or random UUID.
func clusterID(cluster *Cluster, day string) string {
	sum := sha256.Sum256([]byte(day + "|" + cluster.NormalizedTitle))
	return hex.EncodeToString(sum[:6])
}

func payloadAlternatives(alternatives []Alternative) []PayloadAlternative {
	if len(alternatives) == 0 {
		return nil
	}
	out := make([]PayloadAlternative, 0, len(alternatives))
	for _, alt := range alternatives {
		out = append(out, PayloadAlternative{
			URL:          alt.Item.URL,
			SourceDomain: alt.Item.SourceDomain,
			Reason:       alt.Reason,
		})
	}
	return out
}
