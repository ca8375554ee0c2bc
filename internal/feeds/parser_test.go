package feeds

import (
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Wire Desk</title>
    <language>en-US</language>
    <item>
      <title>Senate Passes Budget Bill</title>
      <link>https://wire.example/budget</link>
      <guid>https://wire.example/budget</guid>
      <description><![CDATA[<p>The vote cleared the chamber.</p>]]></description>
      <pubDate>Mon, 10 Mar 2025 09:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Dated Via Dublin Core</title>
      <link>https://wire.example/dc</link>
      <dc:date>2025-03-10T08:00:00Z</dc:date>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Chronicle Updates</title>
  <entry>
    <title>Volcano Erupts in Iceland</title>
    <id>urn:chronicle:volcano-1</id>
    <link rel="alternate" href="https://chronicle.example/volcano"/>
    <link rel="self" href="https://chronicle.example/feed.xml"/>
    <summary>Lava flows near the ridge.</summary>
    <published>2025-03-10T07:15:00Z</published>
    <updated>2025-03-10T09:00:00Z</updated>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleRSS), "rss")
	if err != nil {
		t.Fatalf("parse rss failed: %v", err)
	}
	if doc.FeedTitle != "Wire Desk" {
		t.Fatalf("feed title = %q", doc.FeedTitle)
	}
	if doc.Language != "en-US" {
		t.Fatalf("language = %q", doc.Language)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(doc.Records))
	}

	first := doc.Records[0]
	if first.Link != "https://wire.example/budget" {
		t.Fatalf("link = %q", first.Link)
	}
	if first.Published != "Mon, 10 Mar 2025 09:30:00 +0000" {
		t.Fatalf("published = %q", first.Published)
	}

	// dc:date fills in when pubDate is absent.
	if doc.Records[1].Published != "2025-03-10T08:00:00Z" {
		t.Fatalf("dc:date fallback = %q", doc.Records[1].Published)
	}
}

func TestParseAtom(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleAtom), "atom")
	if err != nil {
		t.Fatalf("parse atom failed: %v", err)
	}
	if doc.FeedTitle != "Chronicle Updates" {
		t.Fatalf("feed title = %q", doc.FeedTitle)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(doc.Records))
	}

	rec := doc.Records[0]
	if rec.Link != "https://chronicle.example/volcano" {
		t.Fatalf("alternate link must win, got %q", rec.Link)
	}
	if rec.Published != "2025-03-10T07:15:00Z" || rec.Updated != "2025-03-10T09:00:00Z" {
		t.Fatalf("timestamps = %q / %q", rec.Published, rec.Updated)
	}
}

func TestParseAutoSniffsKind(t *testing.T) {
	t.Parallel()

	rssDoc, err := Parse([]byte(sampleRSS), "auto")
	if err != nil {
		t.Fatalf("auto rss failed: %v", err)
	}
	if len(rssDoc.Records) != 2 {
		t.Fatalf("auto rss records = %d", len(rssDoc.Records))
	}

	atomDoc, err := Parse([]byte(sampleAtom), "")
	if err != nil {
		t.Fatalf("auto atom failed: %v", err)
	}
	if len(atomDoc.Records) != 1 {
		t.Fatalf("auto atom records = %d", len(atomDoc.Records))
	}

	if _, err := Parse([]byte("<html></html>"), "auto"); err == nil {
		t.Fatal("expected error for non-feed document")
	}
	if _, err := Parse(nil, "auto"); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestRegistryValidate(t *testing.T) {
	t.Parallel()

	valid := &Registry{Feeds: []Feed{
		{Name: "Wire Desk", URL: "https://wire.example/rss", Kind: "RSS", Reliability: 85},
		{Name: "Chronicle", MockFile: "chronicle.xml"},
	}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid registry rejected: %v", err)
	}
	if valid.Feeds[0].Kind != "rss" {
		t.Fatalf("kind must normalize to lowercase, got %q", valid.Feeds[0].Kind)
	}
	if valid.Feeds[1].Kind != "auto" {
		t.Fatalf("empty kind must default to auto, got %q", valid.Feeds[1].Kind)
	}

	cases := []struct {
		name     string
		registry *Registry
	}{
		{"empty", &Registry{}},
		{"missing name", &Registry{Feeds: []Feed{{URL: "https://x.example"}}}},
		{"missing url and mock", &Registry{Feeds: []Feed{{Name: "X"}}}},
		{"bad kind", &Registry{Feeds: []Feed{{Name: "X", URL: "https://x.example", Kind: "opml"}}}},
		{"bad reliability", &Registry{Feeds: []Feed{{Name: "X", URL: "https://x.example", Reliability: 101}}}},
		{"duplicate name", &Registry{Feeds: []Feed{
			{Name: "X", URL: "https://x.example"},
			{Name: "x", URL: "https://y.example"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.registry.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
