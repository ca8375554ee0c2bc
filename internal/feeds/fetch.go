package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultFetchTimeout  = 15 * time.Second
	DefaultBodyByteLimit = 4 * 1024 * 1024

	defaultUserAgent = "daybrief-fetcher/1.0"
)

// Fetcher retrieves raw feed documents. When a mock directory is configured a
// feed's mock file takes priority over the network; a failed fetch also falls
// back to the mock file when one exists.
type Fetcher struct {
	client    *http.Client
	mockDir   string
	userAgent string
	logger    zerolog.Logger
}

type FetcherOptions struct {
	Timeout   time.Duration
	MockDir   string
	UserAgent string
	Client    *http.Client
}

// FeedDocument pairs a feed descriptor with its parsed snapshot.
type FeedDocument struct {
	Feed     Feed
	Document *Document
}

func NewFetcher(opts FetcherOptions, logger zerolog.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    client,
		mockDir:   strings.TrimSpace(opts.MockDir),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch returns the raw bytes of one feed document.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) ([]byte, error) {
	if data, ok := f.readMock(feed); ok {
		return data, nil
	}

	if strings.TrimSpace(feed.URL) == "" {
		if data, ok := f.readMockAlways(feed); ok {
			return data, nil
		}
		return nil, fmt.Errorf("feed %q has no url and no readable mock file", feed.Name)
	}

	data, err := f.fetchHTTP(ctx, feed.URL)
	if err != nil {
		// A stale mock copy beats an empty feed slot.
		if mock, ok := f.readMockAlways(feed); ok {
			f.logger.Warn().Err(err).Str("feed", feed.Name).Msg("feed fetch failed; using mock file fallback")
			return mock, nil
		}
		return nil, err
	}
	return data, nil
}

// FetchAll fetches and parses every registered feed. Per-feed failures are
// logged and skipped; the returned slice preserves registry order.
func (f *Fetcher) FetchAll(ctx context.Context, registry *Registry) []FeedDocument {
	if registry == nil {
		return nil
	}

	documents := make([]FeedDocument, 0, len(registry.Feeds))
	for _, feed := range registry.Feeds {
		raw, err := f.Fetch(ctx, feed)
		if err != nil {
			f.logger.Warn().Err(err).Str("feed", feed.Name).Msg("skipping feed: fetch failed")
			continue
		}

		doc, err := Parse(raw, feed.Kind)
		if err != nil {
			f.logger.Warn().Err(err).Str("feed", feed.Name).Msg("skipping feed: parse failed")
			continue
		}

		f.logger.Debug().Str("feed", feed.Name).Int("records", len(doc.Records)).Msg("feed fetched")
		documents = append(documents, FeedDocument{Feed: feed, Document: doc})
	}
	return documents
}

func (f *Fetcher) fetchHTTP(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, DefaultBodyByteLimit))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return data, nil
}

// readMock reads the mock file when mock mode is active (mock dir configured).
func (f *Fetcher) readMock(feed Feed) ([]byte, bool) {
	if f.mockDir == "" {
		return nil, false
	}
	return f.readMockAlways(feed)
}

// readMockAlways resolves the mock file inside the mock dir when one is
// configured, otherwise it treats mock_file as a plain path.
func (f *Fetcher) readMockAlways(feed Feed) ([]byte, bool) {
	name := strings.TrimSpace(feed.MockFile)
	if name == "" {
		return nil, false
	}
	path := name
	if f.mockDir != "" {
		path = filepath.Join(f.mockDir, filepath.Base(name))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}
