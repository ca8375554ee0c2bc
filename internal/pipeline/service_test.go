package pipeline

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/daybrief/internal/settings"
)

func TestServiceRunRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := NewService(zerolog.Nop()).Run(nil, settings.Default(), testBase)
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestServiceRunEndToEnd(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []Item{
		makeItem("https://a.example/budget", "Senate Passes Budget Bill", "senate passes budget bill",
			[]string{"senate", "passes", "budget", "bill"}, "a.example", asOf.Add(-2*time.Hour)),
		makeItem("https://b.example/budget", "Budget Bill Clears Senate", "budget bill clears senate",
			[]string{"budget", "bill", "clears", "senate"}, "b.example", asOf.Add(-time.Hour)),
		// Exact URL duplicate of the first item, later timestamp.
		makeItem("https://a.example/budget", "Senate Passes Budget Bill (updated)", "senate passes budget bill updated",
			[]string{"senate", "passes", "budget", "bill", "updated"}, "a.example", asOf),
		makeItem("https://c.example/volcano", "Volcano Erupts in Iceland", "volcano erupts in iceland",
			[]string{"volcano", "erupts", "iceland"}, "c.example", asOf.Add(-3*time.Hour)),
	}

	payload, err := NewService(zerolog.Nop()).Run(items, settings.Default(), asOf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if payload.Date != "2025-03-10" {
		t.Fatalf("date = %q", payload.Date)
	}
	if !payload.GeneratedAt.Equal(asOf) {
		t.Fatalf("generatedAt = %s", payload.GeneratedAt)
	}
	if len(payload.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(payload.Clusters))
	}

	for _, cluster := range payload.Clusters {
		if cluster.ClusterID == "" {
			t.Fatal("cluster_id must be set")
		}
		if cluster.BestArticle.URL == "" {
			t.Fatal("best article must be set")
		}
		if cluster.BestArticle.TraceSummary == "" {
			t.Fatal("trace summary must be set")
		}
		if cluster.Priority == "" || cluster.CoverageBreadth == "" {
			t.Fatalf("priority/breadth missing: %+v", cluster)
		}
	}

	// The duplicate URL must not appear twice anywhere.
	seen := map[string]int{}
	for _, cluster := range payload.Clusters {
		for _, article := range cluster.Articles {
			seen[article.URL]++
		}
	}
	if seen["https://a.example/budget"] != 1 {
		t.Fatalf("duplicate URL kept %d times", seen["https://a.example/budget"])
	}
}

func TestServiceRunIsDeterministic(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []Item{
		makeItem("https://a.example/1", "Alpha Event Unfolds", "alpha event unfolds",
			[]string{"alpha", "event", "unfolds"}, "a.example", asOf.Add(-time.Hour)),
		makeItem("https://b.example/2", "Beta Event Continues", "beta event continues",
			[]string{"beta", "event", "continues"}, "b.example", asOf.Add(-2*time.Hour)),
		makeItem("https://c.example/3", "Gamma Event Ends", "gamma event ends",
			[]string{"gamma", "event", "ends"}, "c.example", asOf.Add(-3*time.Hour)),
	}

	first, err := NewService(zerolog.Nop()).Run(items, settings.Default(), asOf)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := NewService(zerolog.Nop()).Run(items, settings.Default(), asOf)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must produce identical payloads")
	}
}

func TestPayloadJSONContract(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []Item{
		makeItem("https://a.example/1", "Alpha Event Unfolds", "alpha event unfolds",
			[]string{"alpha", "event"}, "a.example", asOf.Add(-time.Hour)),
	}

	payload, err := NewService(zerolog.Nop()).Run(items, settings.Default(), asOf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	body := string(raw)

	for _, key := range []string{
		`"date"`, `"generatedAt"`, `"clusters"`,
		`"cluster_id"`, `"rank_score"`, `"priority"`, `"topic_tags"`,
		`"updated_at"`, `"coverage_breadth"`, `"best_article"`,
		`"trace_summary"`, `"source_domain"`, `"reliability_score"`,
	} {
		if !strings.Contains(body, key) {
			t.Fatalf("payload JSON missing %s: %s", key, body)
		}
	}

	// Normalization byproducts stay internal.
	for _, key := range []string{`"NormalizedTitle"`, `"Keywords"`, `"FeedName"`} {
		if strings.Contains(body, key) {
			t.Fatalf("payload JSON must not expose %s", key)
		}
	}
}

func TestClusterIDStableForSameDayAndTitle(t *testing.T) {
	t.Parallel()

	c := clusterOf(makeItem("https://a.example/1", "Alpha", "alpha event", []string{"alpha"}, "a.example", testBase))
	first := clusterID(c, "2025-03-10")
	second := clusterID(c, "2025-03-10")
	if first != second {
		t.Fatalf("cluster id must be stable: %s vs %s", first, second)
	}
	if first == clusterID(c, "2025-03-11") {
		t.Fatal("cluster id must change with the day")
	}
	if len(first) != 12 {
		t.Fatalf("cluster id length = %d, want 12 hex chars", len(first))
	}
}
