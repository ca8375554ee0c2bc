package app

import (
	"testing"
	"time"
)

func TestParseUTCDate(t *testing.T) {
	t.Parallel()

	day, err := parseUTCDate("2025-03-10")
	if err != nil {
		t.Fatalf("parseUTCDate failed: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("day = %s, want %s", day, want)
	}

	for _, bad := range []string{"", "2025-3-10", "10.03.2025"} {
		if _, err := parseUTCDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	got, err := parseOutputFormat("", outputFormatJSON)
	if err != nil || got != outputFormatJSON {
		t.Fatalf("default format = %q, err = %v", got, err)
	}
	if _, err := parseOutputFormat("yaml", outputFormatTable); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncateForTable("a very long headline indeed", 10); got != "a very ..." {
		t.Fatalf("got %q", got)
	}
}
