package pipeline

import (
	"math"
	"testing"
	"time"

	"horse.fit/daybrief/internal/settings"
)

func rankedClusterOf(items ...Item) RankedCluster {
	return RankedCluster{Cluster: clusterOf(items...)}
}

func TestRankClustersScoreComposition(t *testing.T) {
	t.Parallel()

	asOf := testBase
	item := makeItem("https://a.example/1", "Quiet Day", "quiet day", []string{"quiet"}, "a.example", testBase)

	ranked := RankClusters([]RankedCluster{rankedClusterOf(item)}, settings.Default(), asOf)

	// recency 1.0, outlets 1/6, mean region weight 1.0.
	want := 0.5*1.0 + 0.3*(1.0/6.0) + 0.2*1.0
	if math.Abs(ranked[0].RankScore-want) > 1e-9 {
		t.Fatalf("rank score = %v, want %v", ranked[0].RankScore, want)
	}
}

func TestRankClustersTieBreaksDeterministically(t *testing.T) {
	t.Parallel()

	asOf := testBase
	a := rankedClusterOf(makeItem("https://a.example/1", "A Story", "a story", []string{"story"}, "a.example", testBase))
	b := rankedClusterOf(makeItem("https://b.example/2", "B Story", "b story", []string{"story"}, "b.example", testBase))

	// Same score, same updatedAt: lexical title order decides.
	ranked := RankClusters([]RankedCluster{b, a}, settings.Default(), asOf)
	if ranked[0].Cluster.Title != "A Story" {
		t.Fatalf("tie must order by title, got %q first", ranked[0].Cluster.Title)
	}

	// A newer updatedAt outranks the lexical order.
	newer := rankedClusterOf(makeItem("https://c.example/3", "Z Story", "z story", []string{"story"}, "c.example", testBase))
	older := rankedClusterOf(makeItem("https://d.example/4", "A Story", "a story", []string{"story"}, "d.example", testBase.Add(-time.Hour)))
	// Equalize scores by equal recency: recompute with the same asOf but
	// different updatedAt means different recency, so scores differ and the
	// higher recency wins outright.
	ranked = RankClusters([]RankedCluster{older, newer}, settings.Default(), asOf)
	if ranked[0].Cluster.Title != "Z Story" {
		t.Fatalf("newer cluster must rank first, got %q", ranked[0].Cluster.Title)
	}
}

func TestRankClustersTruncatesAndTiers(t *testing.T) {
	t.Parallel()

	asOf := testBase
	policy := settings.Default()
	policy.StoriesPerDay = 4
	policy.TopCount = 1
	policy.ScanCount = 2

	input := make([]RankedCluster, 0, 6)
	for i := 0; i < 6; i++ {
		ts := testBase.Add(-time.Duration(i) * time.Hour)
		url := "https://x.example/" + string(rune('a'+i))
		input = append(input, rankedClusterOf(makeItem(url, "Story "+string(rune('A'+i)), "story", []string{"story"}, "x.example", ts)))
	}

	ranked := RankClusters(input, policy, asOf)
	if len(ranked) != 4 {
		t.Fatalf("expected truncation to 4 clusters, got %d", len(ranked))
	}

	wantPriorities := []string{PriorityTop, PriorityScan, PriorityScan, PriorityLow}
	for i, want := range wantPriorities {
		if ranked[i].Priority != want {
			t.Fatalf("position %d priority = %q, want %q", i, ranked[i].Priority, want)
		}
	}
}

func TestRankClustersBoostAndMute(t *testing.T) {
	t.Parallel()

	asOf := testBase
	policy := settings.Default()
	policy.TopicBoosts = []string{"Climate"}
	policy.KeywordMutes = []string{"celebrity"}

	boosted := rankedClusterOf(makeItem("https://a.example/1", "Climate Accord Signed", "climate accord signed",
		[]string{"climate", "accord"}, "a.example", testBase))
	muted := rankedClusterOf(makeItem("https://b.example/2", "Celebrity Gossip Roundup", "celebrity gossip roundup",
		[]string{"gossip", "roundup"}, "b.example", testBase))
	plain := rankedClusterOf(makeItem("https://c.example/3", "Budget Talks Continue", "budget talks continue",
		[]string{"budget", "talks"}, "c.example", testBase))

	ranked := RankClusters([]RankedCluster{muted, plain, boosted}, policy, asOf)

	if ranked[0].Cluster.Title != "Climate Accord Signed" {
		t.Fatalf("boosted cluster must rank first, got %q", ranked[0].Cluster.Title)
	}
	if ranked[2].Cluster.Title != "Celebrity Gossip Roundup" {
		t.Fatalf("muted cluster must rank last, got %q", ranked[2].Cluster.Title)
	}

	base := ranked[1].RankScore
	if math.Abs(ranked[0].RankScore-(base+0.25)) > 1e-9 {
		t.Fatalf("boost delta = %v, want +0.25", ranked[0].RankScore-base)
	}
	if math.Abs(ranked[2].RankScore-(base-0.5)) > 1e-9 {
		t.Fatalf("mute delta = %v, want -0.5", ranked[2].RankScore-base)
	}
}

func TestCoverageBreadth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		outlets int
		want    string
	}{
		{1, BreadthNarrow},
		{2, BreadthNarrow},
		{3, BreadthMedium},
		{5, BreadthMedium},
		{6, BreadthBroad},
		{9, BreadthBroad},
	}
	for _, tc := range cases {
		if got := coverageBreadth(tc.outlets); got != tc.want {
			t.Fatalf("coverageBreadth(%d) = %q, want %q", tc.outlets, got, tc.want)
		}
	}
}

func TestTopicTagsCapped(t *testing.T) {
	t.Parallel()

	item := makeItem("https://a.example/1", "Big", "big",
		[]string{"one", "two", "three", "four", "five", "six", "seven", "eight"}, "a.example", testBase)
	tags := topicTags(clusterOf(item))
	if len(tags) != maxTopicTags {
		t.Fatalf("topic tags = %d, want cap %d", len(tags), maxTopicTags)
	}
	if tags[0] != "one" || tags[5] != "six" {
		t.Fatalf("tags must keep keyword order, got %v", tags)
	}
}
