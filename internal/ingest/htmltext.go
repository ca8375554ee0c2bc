package ingest

import (
	"html"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	cdataPrefix = "<![CDATA["
	cdataSuffix = "]]>"
)

// DecodeText turns raw feed markup into plain text: CDATA wrappers stripped,
// tags removed, entities decoded, whitespace collapsed.
func DecodeText(raw string) string {
	text := stripCDATA(raw)
	if strings.ContainsRune(text, '<') {
		text = stripMarkup(text)
	}
	text = html.UnescapeString(text)
	return collapseWhitespace(text)
}

func stripCDATA(raw string) string {
	text := strings.TrimSpace(raw)
	for strings.HasPrefix(text, cdataPrefix) && strings.HasSuffix(text, cdataSuffix) {
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, cdataPrefix), cdataSuffix))
	}
	return text
}

func stripMarkup(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
