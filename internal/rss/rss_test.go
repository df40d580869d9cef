package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/retry"
)

func rssDoc(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Test Feed</title>
<link>https://feed.example/</link>
<description>test</description>
` + strings.Join(items, "\n") + `
</channel>
</rss>`
}

func rssItem(title, link, pubDate, description string) string {
	var b strings.Builder
	b.WriteString("<item>")
	if title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", title)
	}
	if link != "" {
		fmt.Fprintf(&b, "<link>%s</link>", link)
	}
	if pubDate != "" {
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>", pubDate)
	}
	if description != "" {
		fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>", description)
	}
	b.WriteString("</item>")
	return b.String()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNormalizesItems(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	srv := serve(t, http.StatusOK, rssDoc(
		rssItem("Town plants 10,000 trees", "https://feed.example/trees", "Mon, 02 Jun 2025 10:00:00 +0000", "<p>Residents <b>turned out</b> in force.</p>"),
		rssItem("", "", "", ""),
		`<item><title>Encoded only</title><link>https://feed.example/enc</link><content:encoded><![CDATA[<div>From the body</div>]]></content:encoded></item>`,
	))

	f := NewFetcher(Options{Now: func() time.Time { return now }, Logger: quietLogger()})
	got, err := f.Fetch(context.Background(), news.FeedSource{Name: "Example", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}

	first := got[0]
	if first.Title != "Town plants 10,000 trees" || first.Link != "https://feed.example/trees" || first.Source != "Example" {
		t.Errorf("unexpected first article: %+v", first)
	}
	if first.PubDate != "Mon, 02 Jun 2025 10:00:00 +0000" {
		t.Errorf("raw pubDate not kept: %q", first.PubDate)
	}
	if !first.Published.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("pubDate not parsed: %v", first.Published)
	}
	if first.ContentSnippet != "Residents turned out in force." {
		t.Errorf("snippet = %q", first.ContentSnippet)
	}

	blank := got[1]
	if blank.Title != "Untitled" || blank.Link != "#" || blank.ContentSnippet != "" {
		t.Errorf("defaults not applied: %+v", blank)
	}
	if blank.PubDate != "2025-06-01T09:30:00Z" || !blank.Published.Equal(now) {
		t.Errorf("missing date should default to now, got %q / %v", blank.PubDate, blank.Published)
	}

	if got[2].ContentSnippet != "From the body" {
		t.Errorf("content fallback snippet = %q", got[2].ContentSnippet)
	}
}

func TestFetchCapsItemsPerFeed(t *testing.T) {
	var items []string
	for i := 0; i < 15; i++ {
		items = append(items, rssItem(fmt.Sprintf("Story %d", i), fmt.Sprintf("https://feed.example/%d", i), "", ""))
	}
	srv := serve(t, http.StatusOK, rssDoc(items...))

	f := NewFetcher(Options{Logger: quietLogger()})
	got, err := f.Fetch(context.Background(), news.FeedSource{Name: "Many", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != DefaultItemsPerFeed {
		t.Fatalf("expected %d articles, got %d", DefaultItemsPerFeed, len(got))
	}
	if got[0].Title != "Story 0" || got[9].Title != "Story 9" {
		t.Errorf("feed order not kept: first %q last %q", got[0].Title, got[9].Title)
	}
}

func TestFetchEmptyFeed(t *testing.T) {
	srv := serve(t, http.StatusOK, rssDoc())

	f := NewFetcher(Options{Logger: quietLogger()})
	got, err := f.Fetch(context.Background(), news.FeedSource{Name: "Empty", URL: srv.URL})
	if err != nil {
		t.Fatalf("empty feed should not fail: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"not found", http.StatusNotFound, ""},
		{"not a feed", http.StatusOK, "<html><body>hello</body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			f := NewFetcher(Options{Logger: quietLogger()})
			got, err := f.Fetch(context.Background(), news.FeedSource{Name: "Broken", URL: srv.URL})
			var fe *news.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *news.FetchError, got %v", err)
			}
			if fe.Source != "Broken" || fe.URL != srv.URL {
				t.Errorf("unexpected error fields: %+v", fe)
			}
			if len(got) != 0 {
				t.Errorf("failed fetch returned %d articles", len(got))
			}
		})
	}
}

func TestFetchRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, rssDoc(rssItem("Second time lucky", "https://feed.example/x", "", "")))
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Retry:  retry.Config{MaxAttempts: 2, Delay: time.Millisecond},
		Logger: quietLogger(),
	})
	got, err := f.Fetch(context.Background(), news.FeedSource{Name: "Flaky", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || calls.Load() != 2 {
		t.Errorf("expected 1 article after 2 calls, got %d after %d", len(got), calls.Load())
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewFetcher(Options{Timeout: 20 * time.Millisecond, Logger: quietLogger()})
	_, err := f.Fetch(context.Background(), news.FeedSource{Name: "Slow", URL: srv.URL})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDefaultFeeds(t *testing.T) {
	feeds := DefaultFeeds()
	if len(feeds) != 4 {
		t.Fatalf("expected 4 built-in feeds, got %d", len(feeds))
	}
	if feeds[0].Name != "Positive News" || feeds[0].Homepage != "https://www.positive.news/" {
		t.Errorf("unexpected first feed: %+v", feeds[0])
	}
}

func TestLoadFeeds(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadFeeds(filepath.Join(dir, "nope.yaml"))
	if err != nil || len(missing) != 4 {
		t.Fatalf("missing file should fall back to defaults, got %d feeds, err %v", len(missing), err)
	}

	path := filepath.Join(dir, "feeds.yaml")
	yaml := "feeds:\n  - name: Local\n    url: https://local.example/rss\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	feeds, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if len(feeds) != 1 || feeds[0].Name != "Local" || feeds[0].URL != "https://local.example/rss" {
		t.Errorf("unexpected feeds: %+v", feeds)
	}
}

func TestParseFeedsValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "feeds: [", "parsing feeds"},
		{"no name", "feeds:\n  - url: https://a.example/rss\n", "name is required"},
		{"no url", "feeds:\n  - name: A\n", "url is required"},
		{"bad scheme", "feeds:\n  - name: A\n    url: ftp://a.example/rss\n", "http or https"},
		{"duplicate", "feeds:\n  - name: A\n    url: https://a.example/rss\n  - name: A\n    url: https://b.example/rss\n", "duplicate name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFeeds([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
