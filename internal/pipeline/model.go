package pipeline

import (
	"time"
)

// Paywall label values.
const (
	PaywallYes = "Yes"
	PaywallNo  = "No"
)

// Priority tiers assigned by rank position.
const (
	PriorityTop  = "top"
	PriorityScan = "scan"
	PriorityLow  = "low"
)

// Coverage breadth buckets derived from unique outlet count.
const (
	BreadthBroad  = "Broad"
	BreadthMedium = "Medium"
	BreadthNarrow = "Narrow"
)

// Labels carries the source-derived metadata attached to every item. The JSON
// field names are part of the output payload contract.
type Labels struct {
	Reliability      string `json:"reliability"`
	ReliabilityScore int    `json:"reliability_score"`
	Region           string `json:"region"`
	Paywall          string `json:"paywall"`
	BiasLabel        string `json:"bias_label,omitempty"`
	Language         string `json:"language,omitempty"`
}

// Item is one normalized feed entry. Only the payload-contract fields are
// serialized; normalization byproducts stay internal.
type Item struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	NormalizedTitle string    `json:"-"`
	Keywords        []string  `json:"-"`
	SourceDomain    string    `json:"source_domain"`
	Timestamp       time.Time `json:"timestamp"`
	Snippet         string    `json:"snippet"`
	Labels          Labels    `json:"labels"`
	FeedName        string    `json:"-"`
}

// Paywalled reports whether the item carries the paywall label.
func (it Item) Paywalled() bool {
	return it.Labels.Paywall == PaywallYes
}

// Cluster is a group of items judged to cover the same event. Articles keeps
// insertion order; Keywords is the ordered union of member keywords and only
// ever grows.
type Cluster struct {
	Title           string
	NormalizedTitle string
	Keywords        []string
	UpdatedAt       time.Time
	Articles        []Item

	keywordSet map[string]struct{}
}

func newCluster(seed Item) *Cluster {
	c := &Cluster{
		Title:           seed.Title,
		NormalizedTitle: seed.NormalizedTitle,
		UpdatedAt:       seed.Timestamp,
		Articles:        []Item{seed},
		keywordSet:      make(map[string]struct{}, len(seed.Keywords)),
	}
	c.addKeywords(seed.Keywords)
	return c
}

func (c *Cluster) absorb(item Item) {
	c.Articles = append(c.Articles, item)
	c.addKeywords(item.Keywords)
	if item.Timestamp.After(c.UpdatedAt) {
		c.UpdatedAt = item.Timestamp
	}
}

func (c *Cluster) addKeywords(keywords []string) {
	if c.keywordSet == nil {
		c.keywordSet = make(map[string]struct{}, len(keywords))
	}
	for _, keyword := range keywords {
		if _, seen := c.keywordSet[keyword]; seen {
			continue
		}
		c.keywordSet[keyword] = struct{}{}
		c.Keywords = append(c.Keywords, keyword)
	}
}

// UniqueOutlets counts distinct source domains among member articles.
func (c *Cluster) UniqueOutlets() int {
	seen := make(map[string]struct{}, len(c.Articles))
	for _, article := range c.Articles {
		seen[article.SourceDomain] = struct{}{}
	}
	return len(seen)
}

// Alternative is a runner-up candidate attached to a best-article decision.
type Alternative struct {
	Item   Item
	Score  float64
	Reason string
}

// BestPick is the selector's decision for one cluster.
type BestPick struct {
	Item         Item
	Score        float64
	TraceSummary string
	Fallback     bool
	Alternatives []Alternative
}

// RankedCluster is a cluster after selection and ranking.
type RankedCluster struct {
	Cluster         *Cluster
	Best            BestPick
	RankScore       float64
	Priority        string
	CoverageBreadth string
	TopicTags       []string
}
