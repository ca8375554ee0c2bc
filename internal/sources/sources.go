package sources

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"horse.fit/daybrief/internal/feeds"
)

// Fallbacks used when neither the source table nor the owning feed carries a
// value for a domain.
const (
	DefaultReliabilityScore = 65
	DefaultRegion           = "Global"

	paywallTag = "paywall"
)

// Reliability buckets.
const (
	ReliabilityHigh = "High"
	ReliabilityMed  = "Med"
	ReliabilityLow  = "Low"
)

// Meta is the externally-owned metadata record for one source domain.
type Meta struct {
	Domain           string   `yaml:"domain" json:"domain"`
	ReliabilityScore int      `yaml:"reliability" json:"reliability_score"`
	Region           string   `yaml:"region" json:"region"`
	Tags             []string `yaml:"tags" json:"tags,omitempty"`
	BiasLabel        string   `yaml:"bias" json:"bias_label,omitempty"`
}

// Resolved is the per-item view after fallback resolution.
type Resolved struct {
	ReliabilityScore int
	Reliability      string
	Region           string
	Paywalled        bool
	BiasLabel        string
}

// Table is a lookup of Meta records keyed by lowercase domain. The zero value
// is usable and resolves everything through fallbacks.
type Table struct {
	byDomain map[string]Meta
}

func NewTable(records []Meta) *Table {
	table := &Table{byDomain: make(map[string]Meta, len(records))}
	for _, record := range records {
		domain := NormalizeDomain(record.Domain)
		if domain == "" {
			continue
		}
		record.Domain = domain
		table.byDomain[domain] = record
	}
	return table
}

// LoadTable reads a YAML source table file. An empty path yields an empty table.
func LoadTable(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return NewTable(nil), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file %q: %w", path, err)
	}

	var doc struct {
		Sources []Meta `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file %q: %w", path, err)
	}

	for i, record := range doc.Sources {
		if strings.TrimSpace(record.Domain) == "" {
			return nil, fmt.Errorf("sources file %q: sources[%d] is missing a domain", path, i)
		}
		if record.ReliabilityScore < 0 || record.ReliabilityScore > 100 {
			return nil, fmt.Errorf("sources file %q: sources[%d] reliability must be 0-100", path, i)
		}
	}

	return NewTable(doc.Sources), nil
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byDomain)
}

// Records returns every table entry sorted by domain.
func (t *Table) Records() []Meta {
	if t == nil || len(t.byDomain) == 0 {
		return []Meta{}
	}
	records := make([]Meta, 0, len(t.byDomain))
	for _, record := range t.byDomain {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Domain < records[j].Domain })
	return records
}

func (t *Table) Lookup(domain string) (Meta, bool) {
	if t == nil || t.byDomain == nil {
		return Meta{}, false
	}
	record, ok := t.byDomain[NormalizeDomain(domain)]
	return record, ok
}

// Resolve maps a domain to its labels: exact table match first, then the
// owning feed's defaults, then the global defaults.
func (t *Table) Resolve(domain string, feed feeds.Feed) Resolved {
	if record, ok := t.Lookup(domain); ok {
		region := strings.TrimSpace(record.Region)
		if region == "" {
			region = fallbackRegion(feed)
		}
		return Resolved{
			ReliabilityScore: record.ReliabilityScore,
			Reliability:      BucketReliability(record.ReliabilityScore),
			Region:           region,
			Paywalled:        hasTag(record.Tags, paywallTag),
			BiasLabel:        strings.TrimSpace(record.BiasLabel),
		}
	}

	score := feed.Reliability
	if score <= 0 {
		score = DefaultReliabilityScore
	}
	return Resolved{
		ReliabilityScore: score,
		Reliability:      BucketReliability(score),
		Region:           fallbackRegion(feed),
		Paywalled:        feed.Paywall,
	}
}

// BucketReliability maps a 0-100 score to a coarse High/Med/Low label.
func BucketReliability(score int) string {
	switch {
	case score >= 80:
		return ReliabilityHigh
	case score >= 60:
		return ReliabilityMed
	default:
		return ReliabilityLow
	}
}

// ReliabilityValue maps a bucket label to its scoring value (Low=1, Med=2, High=3).
func ReliabilityValue(bucket string) int {
	switch bucket {
	case ReliabilityHigh:
		return 3
	case ReliabilityMed:
		return 2
	default:
		return 1
	}
}

// NormalizeDomain lowercases a host and strips a leading "www.".
func NormalizeDomain(raw string) string {
	domain := strings.TrimSpace(strings.ToLower(raw))
	domain = strings.TrimSuffix(domain, ".")
	return strings.TrimPrefix(domain, "www.")
}

func fallbackRegion(feed feeds.Feed) string {
	if region := strings.TrimSpace(feed.Region); region != "" {
		return region
	}
	return DefaultRegion
}

func hasTag(tags []string, wanted string) bool {
	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), wanted) {
			return true
		}
	}
	return false
}
