package pipeline

import (
	"math"
	"strings"
	"testing"
	"time"

	"horse.fit/daybrief/internal/settings"
	"horse.fit/daybrief/internal/sources"
)

func policyWithFloor(floor string) settings.Policy {
	p := settings.Default()
	p.ReliabilityFloor = floor
	return p
}

func labeledItem(url, domain, reliability string, score int, region string, paywalled bool, ts time.Time) Item {
	paywall := PaywallNo
	if paywalled {
		paywall = PaywallYes
	}
	return Item{
		URL:             url,
		Title:           "Plain Headline About Events",
		NormalizedTitle: "plain headline about events",
		SourceDomain:    domain,
		Timestamp:       ts,
		Labels: Labels{
			Reliability:      reliability,
			ReliabilityScore: score,
			Region:           region,
			Paywall:          paywall,
		},
	}
}

func clusterOf(items ...Item) *Cluster {
	c := newCluster(items[0])
	for _, item := range items[1:] {
		c.absorb(item)
	}
	return c
}

func TestSelectBestPrefersReliabilityAboveFloor(t *testing.T) {
	t.Parallel()

	asOf := testBase.Add(12 * time.Hour)
	high := labeledItem("https://wire.example/a", "wire.example", sources.ReliabilityHigh, 90, "US", false, testBase.Add(6*time.Hour))
	low := labeledItem("https://blog.example/b", "blog.example", sources.ReliabilityLow, 30, "US", false, testBase.Add(11*time.Hour))

	pick := SelectBest(clusterOf(high, low), policyWithFloor(sources.ReliabilityMed), asOf)

	if pick.Item.URL != high.URL {
		t.Fatalf("picked %s, want the high-reliability item", pick.Item.URL)
	}
	if pick.Fallback {
		t.Fatal("pick must not be a fallback")
	}

	// 3*3 reliability + 0 weight + (48-6)/24 freshness + 1.0 region.
	want := 9.0 + (48.0-6.0)/24.0 + 1.0
	if math.Abs(pick.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", pick.Score, want)
	}

	if len(pick.Alternatives) != 1 {
		t.Fatalf("expected 1 alternative, got %d", len(pick.Alternatives))
	}
	if pick.Alternatives[0].Reason != "blocked by settings" {
		t.Fatalf("alternative reason = %q", pick.Alternatives[0].Reason)
	}
}

func TestSelectBestFallbackWhenEverythingBlocked(t *testing.T) {
	t.Parallel()

	asOf := testBase.Add(time.Hour)
	medA := labeledItem("https://a.example/1", "a.example", sources.ReliabilityMed, 70, "Global", false, testBase)
	medB := labeledItem("https://b.example/2", "b.example", sources.ReliabilityMed, 65, "Global", false, testBase)

	pick := SelectBest(clusterOf(medA, medB), policyWithFloor(sources.ReliabilityHigh), asOf)

	if !pick.Fallback {
		t.Fatal("expected a fallback pick")
	}
	if pick.Item.URL != medA.URL {
		t.Fatalf("fallback must choose the highest reliability score, got %s", pick.Item.URL)
	}
	if !strings.Contains(pick.TraceSummary, "fallback") {
		t.Fatalf("trace summary must mention fallback: %q", pick.TraceSummary)
	}
}

func TestSelectBestHiddenSourceIsBlocked(t *testing.T) {
	t.Parallel()

	asOf := testBase.Add(time.Hour)
	hidden := labeledItem("https://tabloid.example/1", "tabloid.example", sources.ReliabilityHigh, 88, "Global", false, testBase)
	other := labeledItem("https://paper.example/2", "paper.example", sources.ReliabilityMed, 70, "Global", false, testBase)

	policy := policyWithFloor(sources.ReliabilityLow)
	policy.SourceWeights = map[string]settings.SourceWeight{"tabloid.example": settings.WeightHide}

	pick := SelectBest(clusterOf(hidden, other), policy, asOf)
	if pick.Item.URL != other.URL {
		t.Fatalf("hidden source must not win, picked %s", pick.Item.URL)
	}
	if pick.Fallback {
		t.Fatal("a passing candidate exists, no fallback expected")
	}
}

func TestSelectBestPaywallModes(t *testing.T) {
	t.Parallel()

	asOf := testBase.Add(time.Hour)
	paywalled := labeledItem("https://paid.example/1", "paid.example", sources.ReliabilityHigh, 92, "Global", true, testBase)
	free := labeledItem("https://free.example/2", "free.example", sources.ReliabilityHigh, 85, "Global", false, testBase)

	t.Run("hide blocks paywalled", func(t *testing.T) {
		t.Parallel()
		policy := policyWithFloor(sources.ReliabilityLow)
		policy.PaywallMode = settings.PaywallHide

		pick := SelectBest(clusterOf(paywalled, free), policy, asOf)
		if pick.Item.URL != free.URL {
			t.Fatalf("paywalled item must be hidden, picked %s", pick.Item.URL)
		}
	})

	t.Run("downrank keeps paywalled eligible", func(t *testing.T) {
		t.Parallel()
		policy := policyWithFloor(sources.ReliabilityLow)
		policy.PaywallMode = settings.PaywallDownrank

		pick := SelectBest(clusterOf(paywalled, free), policy, asOf)
		// Both High: identical base scores, paywalled loses exactly 1.0.
		if pick.Item.URL != free.URL {
			t.Fatalf("downranked paywalled item must lose the tie, picked %s", pick.Item.URL)
		}
	})

	t.Run("allow ignores paywall", func(t *testing.T) {
		t.Parallel()
		policy := policyWithFloor(sources.ReliabilityLow)

		pick := SelectBest(clusterOf(paywalled, free), policy, asOf)
		// Equal scores under allow; the URL tie-break is deterministic.
		if pick.Item.URL != free.URL {
			t.Fatalf("unexpected pick %s", pick.Item.URL)
		}
		if pick.Fallback {
			t.Fatal("no fallback expected under allow")
		}
	})

	t.Run("all paywalled under hide falls back", func(t *testing.T) {
		t.Parallel()
		policy := policyWithFloor(sources.ReliabilityLow)
		policy.PaywallMode = settings.PaywallHide

		pick := SelectBest(clusterOf(paywalled), policy, asOf)
		if !pick.Fallback {
			t.Fatal("single paywalled member under hide must fall back")
		}
		if pick.Item.URL != paywalled.URL {
			t.Fatalf("fallback must still yield a pick, got %s", pick.Item.URL)
		}
	})
}

func TestSensationalismPenalty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		want  float64
	}{
		{"plain", "Senate passes budget bill", 0},
		{"one spam word", "Shocking scenes in parliament", 0.3},
		{"repeated spam word counts once", "Shocking, truly shocking scenes", 0.3},
		{"two spam words", "Shocking bombshell report lands", 0.6},
		{"multiple exclamations", "It happened!! Again!", 0.2},
		{"single exclamation is fine", "It happened!", 0},
		{"all caps long title", "GOVERNMENT COLLAPSES OVERNIGHT", 0.3},
		{"short caps title untouched", "BREAKING NEWS NOW", 0},
		{"stacked", "SHOCKING BOMBSHELL REVEALED TODAY!!", 1.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := sensationalismPenalty(tc.title); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("penalty(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestFreshnessTerm(t *testing.T) {
	t.Parallel()

	asOf := testBase
	if got := freshnessTerm(asOf, asOf); got != 2.0 {
		t.Fatalf("fresh item term = %v, want 2.0", got)
	}
	if got := freshnessTerm(asOf.Add(-48*time.Hour), asOf); got != 0 {
		t.Fatalf("48h term = %v, want 0", got)
	}
	if got := freshnessTerm(asOf.Add(-100*time.Hour), asOf); got != 0 {
		t.Fatalf("stale term = %v, want 0 (never negative)", got)
	}
	if got := freshnessTerm(asOf.Add(time.Hour), asOf); got != 2.0 {
		t.Fatalf("future timestamp term = %v, want clamp to 2.0", got)
	}
}

func TestCollectAlternativesCapsAndDedupes(t *testing.T) {
	t.Parallel()

	asOf := testBase.Add(time.Hour)
	items := []Item{
		labeledItem("https://a.example/1", "a.example", sources.ReliabilityHigh, 90, "Global", false, testBase),
		labeledItem("https://b.example/2", "b.example", sources.ReliabilityHigh, 88, "Global", false, testBase),
		labeledItem("https://c.example/3", "c.example", sources.ReliabilityMed, 70, "Global", false, testBase),
		labeledItem("https://d.example/4", "d.example", sources.ReliabilityMed, 65, "Global", false, testBase),
		labeledItem("https://e.example/5", "e.example", sources.ReliabilityLow, 30, "Global", false, testBase),
	}

	pick := SelectBest(clusterOf(items...), policyWithFloor(sources.ReliabilityLow), asOf)
	if len(pick.Alternatives) != 3 {
		t.Fatalf("alternatives capped at 3, got %d", len(pick.Alternatives))
	}
	seen := map[string]struct{}{pick.Item.URL: {}}
	for _, alt := range pick.Alternatives {
		if _, dup := seen[alt.Item.URL]; dup {
			t.Fatalf("duplicate alternative %s", alt.Item.URL)
		}
		seen[alt.Item.URL] = struct{}{}
		if alt.Reason != "lower score" {
			t.Fatalf("reason = %q, want lower score", alt.Reason)
		}
	}
}
