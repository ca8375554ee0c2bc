package httpapi

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/langdetect"
	"horse.fit/daybrief/internal/reader"
)

const (
	defaultPreviewMaxChars = 1000
	minPreviewMaxChars     = 200
	maxPreviewMaxChars     = 4000
	previewFetchTimeout    = 12 * time.Second
)

type articlePreview struct {
	URL         string `json:"url"`
	PreviewText string `json:"preview_text"`
	Language    string `json:"language,omitempty"`
	CharCount   int    `json:"char_count"`
	Truncated   bool   `json:"truncated"`
}

// handlePreview extracts readable text from an article URL for the
// click-to-expand view.
func (s *Server) handlePreview(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return failValidation(c, map[string]string{"url": "is required"})
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return failValidation(c, map[string]string{"url": "must be an absolute http(s) URL"})
	}

	maxChars, err := parsePositiveInt(c.QueryParam("max_chars"), defaultPreviewMaxChars, minPreviewMaxChars, maxPreviewMaxChars)
	if err != nil {
		return failValidation(c, map[string]string{"max_chars": err.Error()})
	}

	text, err := reader.FetchTextWithOptions(c.Request().Context(), rawURL, "", reader.FetchOptions{
		Timeout:   previewFetchTimeout,
		UserAgent: s.cfg.FetchUserAgent,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rawURL).Msg("reader preview failed")
		return fail(c, 502, "Could not extract a preview from that URL", nil)
	}

	previewText, truncated := reader.TruncateText(text, maxChars)
	return success(c, &articlePreview{
		URL:         rawURL,
		PreviewText: previewText,
		Language:    langdetect.DetectISO6391(previewText),
		CharCount:   utf8.RuneCountInString(previewText),
		Truncated:   truncated,
	})
}
