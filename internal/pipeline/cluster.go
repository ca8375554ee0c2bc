package pipeline

import (
	"time"
)

// Clustering tunables. The threshold and window are product constants carried
// over from the original reading policy; treat changes as behavior changes,
// not cleanups.
const (
	DefaultSimilarityThreshold = 0.45
	DefaultClusterWindow       = 24 * time.Hour
)

// ClusterOptions carries the clustering tunables.
type ClusterOptions struct {
	SimilarityThreshold float64
	Window              time.Duration
}

func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		SimilarityThreshold: DefaultSimilarityThreshold,
		Window:              DefaultClusterWindow,
	}
}

// BuildClusters groups items into event clusters with a greedy single pass:
// each item joins the first existing cluster (in creation order) that is both
// time-proximate and similar, otherwise it seeds a new cluster. The result
// partitions the input exactly.
//
// A cluster's keyword set grows by union as it absorbs members, so admission
// gets easier for already-large clusters. That bias is intentional.
func BuildClusters(items []Item, opts ClusterOptions) []*Cluster {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.Window <= 0 {
		opts.Window = DefaultClusterWindow
	}

	clusters := make([]*Cluster, 0, len(items))
	for _, item := range items {
		var matched *Cluster
		for _, cluster := range clusters {
			if clusterMatches(cluster, item, opts) {
				matched = cluster
				break
			}
		}
		if matched != nil {
			matched.absorb(item)
			continue
		}
		clusters = append(clusters, newCluster(item))
	}
	return clusters
}

func clusterMatches(cluster *Cluster, item Item, opts ClusterOptions) bool {
	if !withinWindow(cluster.UpdatedAt, item.Timestamp, opts.Window) {
		return false
	}
	if cluster.NormalizedTitle != "" && cluster.NormalizedTitle == item.NormalizedTitle {
		return true
	}
	return keywordJaccard(cluster.keywordSet, item.Keywords) >= opts.SimilarityThreshold
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

// keywordJaccard computes intersection/union between the cluster's accumulated
// keyword set and an item's keyword list. Two empty sets overlap 0, never 1.
func keywordJaccard(set map[string]struct{}, keywords []string) float64 {
	if len(set) == 0 || len(keywords) == 0 {
		return 0
	}

	intersection := 0
	distinct := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		if _, dup := distinct[keyword]; dup {
			continue
		}
		distinct[keyword] = struct{}{}
		if _, ok := set[keyword]; ok {
			intersection++
		}
	}

	union := len(set) + len(distinct) - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
