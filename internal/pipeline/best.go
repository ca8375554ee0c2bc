package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"horse.fit/daybrief/internal/settings"
	"horse.fit/daybrief/internal/sources"
)

// Best-article scoring tunables.
const (
	reliabilityWeight       = 3.0
	freshnessHorizonHours   = 48.0
	freshnessDivisorHours   = 24.0
	spamWordPenalty         = 0.3
	multiExclamationPenalty = 0.2
	shoutingTitlePenalty    = 0.3
	shoutingTitleMinLength  = 18
	hidePaywallPenalty      = -100.0
	downrankPaywallPenalty  = -1.0
	maxAlternatives         = 3
)

// Whole-word matches (case-insensitive) that mark a sensationalist headline.
var spamWords = map[string]struct{}{
	"shocking":  {},
	"explosive": {},
	"stunning":  {},
	"bombshell": {},
	"exclusive": {},
}

type candidate struct {
	item        Item
	score       float64
	blocked     bool
	blockReason string
}

// SelectBest scores every member of a cluster under the policy and picks the
// highest-scored non-blocked candidate. Blocked candidates stay in the pool
// used for alternatives. When everything is blocked the selector falls back to
// the highest-reliability member, so a non-empty cluster always yields a pick.
func SelectBest(cluster *Cluster, policy settings.Policy, asOf time.Time) BestPick {
	candidates := make([]candidate, 0, len(cluster.Articles))
	for _, item := range cluster.Articles {
		candidates = append(candidates, scoreCandidate(item, policy, asOf))
	}

	// Deterministic candidate order: score desc, then newer item, then URL.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if !candidates[i].item.Timestamp.Equal(candidates[j].item.Timestamp) {
			return candidates[i].item.Timestamp.After(candidates[j].item.Timestamp)
		}
		return candidates[i].item.URL < candidates[j].item.URL
	})

	var chosen *candidate
	for i := range candidates {
		if !candidates[i].blocked {
			chosen = &candidates[i]
			break
		}
	}

	fallback := chosen == nil
	if fallback {
		chosen = fallbackCandidate(candidates)
	}

	pick := BestPick{
		Item:         chosen.item,
		Score:        chosen.score,
		Fallback:     fallback,
		TraceSummary: traceSummary(chosen.item, policy, fallback),
		Alternatives: collectAlternatives(candidates, chosen.item.URL),
	}
	return pick
}

func scoreCandidate(item Item, policy settings.Policy, asOf time.Time) candidate {
	reliabilityValue := sources.ReliabilityValue(item.Labels.Reliability)

	score := float64(reliabilityValue) * reliabilityWeight
	score += policy.SourceWeightValue(item.SourceDomain)
	score += freshnessTerm(item.Timestamp, asOf)
	score += policy.RegionWeightFor(item.Labels.Region)
	score -= sensationalismPenalty(item.Title)
	score += paywallPenalty(item, policy.PaywallMode)

	c := candidate{item: item, score: score}
	switch {
	case reliabilityValue < policy.FloorValue():
		c.blocked = true
		c.blockReason = "reliability below floor"
	case policy.WeightFor(item.SourceDomain) == settings.WeightHide:
		c.blocked = true
		c.blockReason = "source hidden"
	case policy.PaywallMode == settings.PaywallHide && item.Paywalled():
		c.blocked = true
		c.blockReason = "paywalled"
	}
	return c
}

// freshnessTerm decays linearly from 2.0 at publication to 0 at 48 hours.
func freshnessTerm(published, asOf time.Time) float64 {
	hours := asOf.Sub(published).Hours()
	if hours < 0 {
		hours = 0
	}
	remaining := freshnessHorizonHours - hours
	if remaining < 0 {
		return 0
	}
	return remaining / freshnessDivisorHours
}

func sensationalismPenalty(title string) float64 {
	penalty := 0.0

	matched := make(map[string]struct{}, len(spamWords))
	for _, word := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if _, spam := spamWords[word]; !spam {
			continue
		}
		if _, dup := matched[word]; dup {
			continue
		}
		matched[word] = struct{}{}
		penalty += spamWordPenalty
	}

	if strings.Count(title, "!") > 1 {
		penalty += multiExclamationPenalty
	}

	if len(title) >= shoutingTitleMinLength && isShouting(title) {
		penalty += shoutingTitlePenalty
	}

	return penalty
}

// isShouting reports whether a title is entirely upper-case (ignoring runes
// with no case).
func isShouting(title string) bool {
	hasLetter := false
	for _, r := range title {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if unicode.IsLower(r) {
			return false
		}
	}
	return hasLetter
}

func paywallPenalty(item Item, mode settings.PaywallMode) float64 {
	if !item.Paywalled() {
		return 0
	}
	switch mode {
	case settings.PaywallHide:
		return hidePaywallPenalty
	case settings.PaywallDownrank:
		return downrankPaywallPenalty
	default:
		return 0
	}
}

// fallbackCandidate picks the globally highest-reliability candidate when the
// policy blocked everything. candidates is already score-sorted, so the first
// hit at the best reliability score is the deterministic choice.
func fallbackCandidate(candidates []candidate) *candidate {
	best := &candidates[0]
	for i := range candidates {
		if candidates[i].item.Labels.ReliabilityScore > best.item.Labels.ReliabilityScore {
			best = &candidates[i]
		}
	}
	return best
}

func traceSummary(item Item, policy settings.Policy, fallback bool) string {
	if fallback {
		return fmt.Sprintf(
			"fallback pick: no candidate satisfied the policy floor; chose %s as the highest-reliability member (%s, score %d)",
			item.SourceDomain, item.Labels.Reliability, item.Labels.ReliabilityScore,
		)
	}
	return fmt.Sprintf(
		"picked %s: reliability %s (score %d), paywall %s under paywall mode %q",
		item.SourceDomain, item.Labels.Reliability, item.Labels.ReliabilityScore,
		item.Labels.Paywall, string(policy.PaywallMode),
	)
}

func collectAlternatives(candidates []candidate, chosenURL string) []Alternative {
	alternatives := make([]Alternative, 0, maxAlternatives)
	seen := map[string]struct{}{chosenURL: {}}
	for _, c := range candidates {
		if len(alternatives) == maxAlternatives {
			break
		}
		if _, dup := seen[c.item.URL]; dup {
			continue
		}
		seen[c.item.URL] = struct{}{}

		reason := "lower score"
		if c.blocked {
			reason = "blocked by settings"
		}
		alternatives = append(alternatives, Alternative{
			Item:   c.item,
			Score:  c.score,
			Reason: reason,
		})
	}
	return alternatives
}
