package pipeline

import (
	"sort"
	"time"

	"horse.fit/daybrief/internal/settings"
)

// Rank scoring tunables. The factor weights are fixed relative to each other;
// recency dominates, outlet breadth and regional fit refine.
const (
	rankRecencyWeight       = 0.5
	rankOutletWeight        = 0.3
	rankRegionWeight        = 0.2
	rankTopicBoost          = 0.25
	rankMutePenalty         = 0.5
	rankRecencyHorizonHours = 72.0

	outletNormalizationCap = 6

	breadthBroadMinOutlets  = 6
	breadthMediumMinOutlets = 3

	maxTopicTags = 6
)

// RankClusters scores, orders, truncates and tiers the cluster list. Ties on
// rank score break toward the newer updatedAt, then lexical title order, so
// output ordering is total and reproducible.
func RankClusters(ranked []RankedCluster, policy settings.Policy, asOf time.Time) []RankedCluster {
	for i := range ranked {
		ranked[i].TopicTags = topicTags(ranked[i].Cluster)
		ranked[i].RankScore = rankScore(ranked[i], policy, asOf)
		ranked[i].CoverageBreadth = coverageBreadth(ranked[i].Cluster.UniqueOutlets())
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RankScore != ranked[j].RankScore {
			return ranked[i].RankScore > ranked[j].RankScore
		}
		if !ranked[i].Cluster.UpdatedAt.Equal(ranked[j].Cluster.UpdatedAt) {
			return ranked[i].Cluster.UpdatedAt.After(ranked[j].Cluster.UpdatedAt)
		}
		return ranked[i].Cluster.Title < ranked[j].Cluster.Title
	})

	if policy.StoriesPerDay > 0 && len(ranked) > policy.StoriesPerDay {
		ranked = ranked[:policy.StoriesPerDay]
	}

	for i := range ranked {
		ranked[i].Priority = priorityForPosition(i, policy.TopCount, policy.ScanCount)
	}
	return ranked
}

func rankScore(rc RankedCluster, policy settings.Policy, asOf time.Time) float64 {
	cluster := rc.Cluster

	recency := recencyTerm(cluster.UpdatedAt, asOf)

	outlets := cluster.UniqueOutlets()
	if outlets > outletNormalizationCap {
		outlets = outletNormalizationCap
	}
	outletTerm := float64(outlets) / float64(outletNormalizationCap)

	regionTerm := meanRegionWeight(cluster, policy)

	score := rankRecencyWeight*recency + rankOutletWeight*outletTerm + rankRegionWeight*regionTerm
	if policy.HasBoostedTopic(rc.TopicTags) {
		score += rankTopicBoost
	}
	if policy.IsMutedTitle(cluster.Title) {
		score -= rankMutePenalty
	}
	return score
}

// recencyTerm decays linearly from 1 at updatedAt to 0 at 72 hours old.
func recencyTerm(updatedAt, asOf time.Time) float64 {
	hours := asOf.Sub(updatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	remaining := rankRecencyHorizonHours - hours
	if remaining < 0 {
		return 0
	}
	return remaining / rankRecencyHorizonHours
}

func meanRegionWeight(cluster *Cluster, policy settings.Policy) float64 {
	if len(cluster.Articles) == 0 {
		return 0
	}
	total := 0.0
	for _, article := range cluster.Articles {
		total += policy.RegionWeightFor(article.Labels.Region)
	}
	return total / float64(len(cluster.Articles))
}

func coverageBreadth(uniqueOutlets int) string {
	switch {
	case uniqueOutlets >= breadthBroadMinOutlets:
		return BreadthBroad
	case uniqueOutlets >= breadthMediumMinOutlets:
		return BreadthMedium
	default:
		return BreadthNarrow
	}
}

func priorityForPosition(position, topCount, scanCount int) string {
	switch {
	case position < topCount:
		return PriorityTop
	case position < topCount+scanCount:
		return PriorityScan
	default:
		return PriorityLow
	}
}

func topicTags(cluster *Cluster) []string {
	if len(cluster.Keywords) <= maxTopicTags {
		return append([]string(nil), cluster.Keywords...)
	}
	return append([]string(nil), cluster.Keywords[:maxTopicTags]...)
}
