package feeds

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// RawRecord is one feed entry before normalization. Fields carry the raw
// feed-specific text; the ingest package owns all cleanup.
type RawRecord struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Published   string
	Updated     string
}

// Document is one parsed feed snapshot.
type Document struct {
	FeedTitle string
	Language  string
	Records   []RawRecord
}

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title    string    `xml:"title"`
		Language string    `xml:"language"`
		Items    []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	DCDate      string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	ID        string     `xml:"id"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Parse decodes one raw feed document. kind is "rss", "atom" or "auto"; auto
// sniffs the root element.
func Parse(data []byte, kind string) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("feed document is empty")
	}

	resolved := strings.TrimSpace(strings.ToLower(kind))
	if resolved == "" || resolved == "auto" {
		resolved = sniffKind(data)
	}

	switch resolved {
	case "rss":
		return parseRSS(data)
	case "atom":
		return parseAtom(data)
	default:
		return nil, fmt.Errorf("unrecognized feed document (expected rss or atom root element)")
	}
}

func sniffKind(data []byte) string {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	switch {
	case strings.Contains(head, "<rss"):
		return "rss"
	case strings.Contains(head, "<feed"):
		return "atom"
	default:
		return ""
	}
}

func parseRSS(data []byte) (*Document, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rss document: %w", err)
	}

	records := make([]RawRecord, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		published := strings.TrimSpace(item.PubDate)
		if published == "" {
			published = strings.TrimSpace(item.DCDate)
		}
		records = append(records, RawRecord{
			Title:       item.Title,
			Link:        strings.TrimSpace(item.Link),
			GUID:        strings.TrimSpace(item.GUID),
			Description: item.Description,
			Published:   published,
		})
	}

	return &Document{
		FeedTitle: strings.TrimSpace(doc.Channel.Title),
		Language:  strings.TrimSpace(doc.Channel.Language),
		Records:   records,
	}, nil
}

func parseAtom(data []byte) (*Document, error) {
	var doc atomDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode atom document: %w", err)
	}

	records := make([]RawRecord, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		description := entry.Summary
		if strings.TrimSpace(description) == "" {
			description = entry.Content
		}
		records = append(records, RawRecord{
			Title:       entry.Title,
			Link:        pickAtomLink(entry.Links),
			GUID:        strings.TrimSpace(entry.ID),
			Description: description,
			Published:   strings.TrimSpace(entry.Published),
			Updated:     strings.TrimSpace(entry.Updated),
		})
	}

	return &Document{
		FeedTitle: strings.TrimSpace(doc.Title),
		Records:   records,
	}, nil
}

// pickAtomLink prefers rel="alternate", then the first link without a rel,
// then whatever is left.
func pickAtomLink(links []atomLink) string {
	var bare string
	var any string
	for _, link := range links {
		href := strings.TrimSpace(link.Href)
		if href == "" {
			continue
		}
		switch strings.TrimSpace(strings.ToLower(link.Rel)) {
		case "alternate":
			return href
		case "":
			if bare == "" {
				bare = href
			}
		}
		if any == "" {
			any = href
		}
	}
	if bare != "" {
		return bare
	}
	return any
}
