package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeMockFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write mock file: %v", err)
	}
}

func TestFetchPrefersMockDir(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network must not be hit when a mock file exists")
	}))
	defer server.Close()

	dir := t.TempDir()
	writeMockFile(t, dir, "wire.xml", sampleRSS)

	fetcher := NewFetcher(FetcherOptions{MockDir: dir}, zerolog.Nop())
	data, err := fetcher.Fetch(context.Background(), Feed{
		Name:     "Wire Desk",
		URL:      server.URL,
		MockFile: "wire.xml",
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(data) != sampleRSS {
		t.Fatal("mock file content expected")
	}
}

func TestFetchHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("user agent header missing")
		}
		w.Write([]byte(sampleAtom))
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherOptions{}, zerolog.Nop())
	data, err := fetcher.Fetch(context.Background(), Feed{Name: "Chronicle", URL: server.URL})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(data) != sampleAtom {
		t.Fatal("body mismatch")
	}
}

func TestFetchFallsBackToMockOnHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeMockFile(t, dir, "stale.xml", sampleRSS)

	// No mock dir configured, so the network is tried first and the mock
	// file path is only consulted after the 502.
	fetcher := NewFetcher(FetcherOptions{}, zerolog.Nop())
	feed := Feed{
		Name:     "Wire Desk",
		URL:      server.URL,
		MockFile: filepath.Join(dir, "stale.xml"),
	}

	data, err := fetcher.Fetch(context.Background(), feed)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(data) != sampleRSS {
		t.Fatal("fallback content expected")
	}
}

func TestFetchAllSkipsFailuresAndPreservesOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeMockFile(t, dir, "first.xml", sampleRSS)
	writeMockFile(t, dir, "third.xml", sampleAtom)

	registry := &Registry{Feeds: []Feed{
		{Name: "First", MockFile: "first.xml"},
		{Name: "Broken", URL: server.URL},
		{Name: "Third", MockFile: "third.xml"},
	}}
	if err := registry.Validate(); err != nil {
		t.Fatalf("registry validate: %v", err)
	}

	fetcher := NewFetcher(FetcherOptions{MockDir: dir}, zerolog.Nop())
	docs := fetcher.FetchAll(context.Background(), registry)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}
	if docs[0].Feed.Name != "First" || docs[1].Feed.Name != "Third" {
		t.Fatalf("order = %q, %q", docs[0].Feed.Name, docs[1].Feed.Name)
	}
	if docs[1].Document.FeedTitle != "Chronicle Updates" {
		t.Fatalf("parsed title = %q", docs[1].Document.FeedTitle)
	}
}
