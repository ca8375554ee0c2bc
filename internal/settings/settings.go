package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	settingsschema "horse.fit/daybrief/schema"

	"horse.fit/daybrief/internal/sources"
)

// PaywallMode controls how paywalled items are treated during selection.
type PaywallMode string

const (
	PaywallAllow    PaywallMode = "allow"
	PaywallDownrank PaywallMode = "downrank"
	PaywallHide     PaywallMode = "hide"
)

// SourceWeight is the per-domain preference expressed in user settings.
type SourceWeight string

const (
	WeightHide   SourceWeight = "hide"
	WeightNormal SourceWeight = "normal"
	WeightBoost  SourceWeight = "boost"
)

// Score contributions per source weight.
const (
	boostWeightValue  = 1.0
	normalWeightValue = 0.0
	hideWeightValue   = -3.0

	defaultRegionWeight = 1.0
)

// Policy is the user-owned reading policy. Sparse maps fall back to defined
// defaults: unknown domains weigh "normal", unknown regions weigh 1.0.
type Policy struct {
	ReliabilityFloor string                  `json:"reliability_floor"`
	SourceWeights    map[string]SourceWeight `json:"source_weights,omitempty"`
	PaywallMode      PaywallMode             `json:"paywall_mode"`
	RegionWeights    map[string]float64      `json:"region_weights,omitempty"`
	TopicBoosts      []string                `json:"topic_boosts,omitempty"`
	KeywordMutes     []string                `json:"keyword_mutes,omitempty"`
	StoriesPerDay    int                     `json:"stories_per_day"`
	TopCount         int                     `json:"top_count"`
	ScanCount        int                     `json:"scan_count"`
}

// Default returns the policy applied when no settings document exists.
func Default() Policy {
	return Policy{
		ReliabilityFloor: sources.ReliabilityLow,
		PaywallMode:      PaywallAllow,
		StoriesPerDay:    12,
		TopCount:         3,
		ScanCount:        5,
	}
}

// Load reads, validates and decodes a settings JSON file on top of the
// defaults. A missing file (os.ErrNotExist) yields the default policy.
func Load(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Policy{}, fmt.Errorf("read settings file %q: %w", path, err)
	}
	return Decode(raw)
}

// Decode validates a settings JSON document and merges it over the defaults.
func Decode(raw json.RawMessage) (Policy, error) {
	if err := settingsschema.ValidateSettingsPayload(raw); err != nil {
		return Policy{}, fmt.Errorf("invalid settings: %w", err)
	}

	policy := Default()
	if err := json.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	policy.normalize()
	return policy, nil
}

func (p *Policy) normalize() {
	if p.SourceWeights != nil {
		normalized := make(map[string]SourceWeight, len(p.SourceWeights))
		for domain, weight := range p.SourceWeights {
			key := sources.NormalizeDomain(domain)
			if key == "" {
				continue
			}
			normalized[key] = weight
		}
		p.SourceWeights = normalized
	}
	if p.StoriesPerDay < 1 {
		p.StoriesPerDay = Default().StoriesPerDay
	}
}

// FloorValue is the reliability value (1-3) a candidate must reach to win.
func (p Policy) FloorValue() int {
	return sources.ReliabilityValue(p.ReliabilityFloor)
}

// WeightFor returns the configured weight for a domain, defaulting to normal.
func (p Policy) WeightFor(domain string) SourceWeight {
	if weight, ok := p.SourceWeights[sources.NormalizeDomain(domain)]; ok {
		return weight
	}
	return WeightNormal
}

// SourceWeightValue is the score contribution of a domain's weight.
func (p Policy) SourceWeightValue(domain string) float64 {
	switch p.WeightFor(domain) {
	case WeightBoost:
		return boostWeightValue
	case WeightHide:
		return hideWeightValue
	default:
		return normalWeightValue
	}
}

// RegionWeightFor returns the configured weight for a region, defaulting to 1.0.
func (p Policy) RegionWeightFor(region string) float64 {
	wanted := strings.TrimSpace(strings.ToLower(region))
	for key, weight := range p.RegionWeights {
		if strings.TrimSpace(strings.ToLower(key)) == wanted {
			return weight
		}
	}
	return defaultRegionWeight
}

// IsMutedTitle reports whether a cluster title contains any muted keyword
// (case-insensitive substring match).
func (p Policy) IsMutedTitle(title string) bool {
	lowered := strings.ToLower(title)
	for _, mute := range p.KeywordMutes {
		needle := strings.TrimSpace(strings.ToLower(mute))
		if needle == "" {
			continue
		}
		if strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}

// HasBoostedTopic reports whether any topic tag matches the boost list.
func (p Policy) HasBoostedTopic(tags []string) bool {
	for _, tag := range tags {
		for _, boost := range p.TopicBoosts {
			if strings.EqualFold(strings.TrimSpace(tag), strings.TrimSpace(boost)) {
				return true
			}
		}
	}
	return false
}
