package ingest

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"horse.fit/daybrief/internal/feeds"
	"horse.fit/daybrief/internal/langdetect"
	"horse.fit/daybrief/internal/language"
	"horse.fit/daybrief/internal/pipeline"
	"horse.fit/daybrief/internal/sources"
)

// Tunable normalization constants.
const (
	// maxKeywords caps the keyword list carried per item.
	maxKeywords = 8
	// minKeywordLength drops short function words from keyword extraction.
	minKeywordLength = 4
	// maxSnippetLength truncates overly long descriptions.
	maxSnippetLength = 480
)

// trackingParams are query parameters removed during URL canonicalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
}

// timestampLayouts are tried in order when parsing feed dates.
var timestampLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw feed record into a pipeline item. It returns nil
// when the record has no usable URL or title.
func Normalize(rec feeds.RawRecord, feed feeds.Feed, doc feeds.Document, table *sources.Table, asOf time.Time) *pipeline.Item {
	link := strings.TrimSpace(rec.Link)
	if link == "" {
		link = strings.TrimSpace(rec.GUID)
	}
	title := DecodeText(rec.Title)
	if link == "" || title == "" {
		return nil
	}

	canonical := CanonicalizeURL(link)
	domain := sources.NormalizeDomain(hostOf(canonical))
	resolved := table.Resolve(domain, feed)

	snippet := DecodeText(rec.Description)
	if snippet == "" {
		snippet = fmt.Sprintf("From %s", feed.Name)
	}
	if len(snippet) > maxSnippetLength {
		snippet = strings.TrimSpace(snippet[:maxSnippetLength])
	}

	normalized := NormalizeTitle(title)

	item := &pipeline.Item{
		URL:             canonical,
		Title:           title,
		NormalizedTitle: normalized,
		Keywords:        ExtractKeywords(normalized),
		SourceDomain:    domain,
		FeedName:        feed.Name,
		Timestamp:       parseTimestamp(rec, asOf),
		Snippet:         snippet,
		Labels: pipeline.Labels{
			Reliability:      resolved.Reliability,
			ReliabilityScore: resolved.ReliabilityScore,
			Region:           resolved.Region,
			Paywall:          paywallLabel(resolved.Paywalled),
			BiasLabel:        resolved.BiasLabel,
			Language:         detectLanguage(doc.Language, title, snippet),
		},
	}
	return item
}

// CanonicalizeURL lowercases scheme and host, strips fragments and known
// tracking parameters, and sorts the surviving query keys. A URL that fails
// to parse is returned trimmed rather than discarded.
func CanonicalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return trimmed
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		if _, tracking := trackingParams[strings.ToLower(key)]; tracking {
			query.Del(key)
		}
	}
	parsed.RawQuery = sortedQuery(query)

	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}

func sortedQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		values := query[key]
		sort.Strings(values)
		for _, value := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

// NormalizeTitle lowercases a headline, removes a trailing wire-service
// suffix, strips punctuation, and collapses whitespace.
func NormalizeTitle(title string) string {
	stripped := StripWireSuffix(title)
	var b strings.Builder
	b.Grow(len(stripped))
	lastSpace := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace && b.Len() > 0:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// wireSeparators mark a trailing publication suffix in a headline.
var wireSeparators = []string{" - ", " – ", " — ", " | "}

// StripWireSuffix removes a trailing outlet name like "... - Reuters" when
// the suffix is short and every word is capitalized. The headline body is
// kept untouched otherwise.
func StripWireSuffix(title string) string {
	best := -1
	sep := ""
	for _, candidate := range wireSeparators {
		if idx := strings.LastIndex(title, candidate); idx > best {
			best = idx
			sep = candidate
		}
	}
	if best <= 0 {
		return title
	}
	suffix := strings.TrimSpace(title[best+len(sep):])
	words := strings.Fields(suffix)
	if len(words) == 0 || len(words) > 4 {
		return title
	}
	for _, word := range words {
		r := []rune(word)
		if !unicode.IsUpper(r[0]) {
			return title
		}
	}
	return strings.TrimSpace(title[:best])
}

// ExtractKeywords pulls distinct tokens from a normalized title, keeping
// their first-seen order.
func ExtractKeywords(normalized string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxKeywords)
	for _, token := range strings.Fields(normalized) {
		if len([]rune(token)) < minKeywordLength {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func parseTimestamp(rec feeds.RawRecord, asOf time.Time) time.Time {
	for _, raw := range []string{rec.Published, rec.Updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.UTC()
			}
		}
	}
	return asOf.UTC()
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func paywallLabel(paywalled bool) string {
	if paywalled {
		return pipeline.PaywallYes
	}
	return pipeline.PaywallNo
}

func detectLanguage(channelLanguage, title, snippet string) string {
	if code := language.NormalizeCode(channelLanguage); code != "" {
		return code
	}
	if code := langdetect.DetectISO6391(title + " " + snippet); code != "" {
		return code
	}
	return "en"
}
