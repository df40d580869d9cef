package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Article is a normalized feed item. Title drives deduplication, Source
// drives diversity sampling and the publish date drives recency ordering.
type Article struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	PubDate        string `json:"pubDate"`
	Source         string `json:"source"`
	ContentSnippet string `json:"contentSnippet"`

	// Published is PubDate as parsed by the fetcher. Zero means undated.
	Published time.Time `json:"-"`
}

// FeedSource is one configured feed.
type FeedSource struct {
	URL      string `yaml:"url" json:"url"`
	Name     string `yaml:"name" json:"name"`
	Homepage string `yaml:"homepage" json:"homepage"`
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339Nano,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePubDate parses the date formats commonly found in RSS and Atom feeds.
func ParsePubDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PublishedAt is the instant used for recency ordering. Articles whose date
// cannot be parsed are undated and report the zero time.
func (a Article) PublishedAt() time.Time {
	if !a.Published.IsZero() {
		return a.Published
	}
	t, _ := ParsePubDate(a.PubDate)
	return t
}

// Fetcher retrieves the articles of a single feed.
type Fetcher interface {
	Fetch(ctx context.Context, source FeedSource) ([]Article, error)
}

// FetchError records why one feed contributed nothing to an aggregation cycle.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchResult is the settled outcome of fetching one feed.
type FetchResult struct {
	Source   FeedSource
	Articles []Article
	Err      error
}

// FetchAll fetches every source concurrently and waits for all of them to
// settle. Results are returned in source order; a failed or panicking fetch
// yields a result with Err set and no articles.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []FeedSource) []FetchResult {
	results := make([]FetchResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, s FeedSource) {
			defer wg.Done()
			results[i] = fetchOne(ctx, fetcher, s)
		}(i, src)
	}
	wg.Wait()

	return results
}

func fetchOne(ctx context.Context, fetcher Fetcher, s FeedSource) (res FetchResult) {
	res.Source = s
	defer func() {
		if r := recover(); r != nil {
			res.Articles = nil
			res.Err = &FetchError{Source: s.Name, URL: s.URL, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	articles, err := fetcher.Fetch(ctx, s)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Source: s.Name, URL: s.URL, Err: err}
		}
		res.Err = err
		return res
	}
	res.Articles = articles
	return res
}
