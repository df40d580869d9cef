package rss

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/retry"
	"github.com/deusflow/goodnews/internal/snippet"
)

const (
	DefaultItemsPerFeed = 10
	defaultUserAgent    = "goodnews/1.0 (+https://github.com/deusflow/goodnews)"
)

type Options struct {
	// ItemsPerFeed caps how many items are taken from the top of each feed.
	ItemsPerFeed int
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout   time.Duration
	Retry     retry.Config
	Client    *http.Client
	UserAgent string
	Now       func() time.Time
	Logger    *slog.Logger
}

// Fetcher downloads and normalizes RSS, Atom and JSON feeds.
type Fetcher struct {
	opts Options
}

var _ news.Fetcher = (*Fetcher)(nil)

func NewFetcher(opts Options) *Fetcher {
	if opts.ItemsPerFeed <= 0 {
		opts.ItemsPerFeed = DefaultItemsPerFeed
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Fetcher{opts: opts}
}

// Fetch returns up to ItemsPerFeed articles from src in feed order. Any
// failure is logged and reported as a *news.FetchError with no articles.
func (f *Fetcher) Fetch(ctx context.Context, src news.FeedSource) ([]news.Article, error) {
	log := f.opts.Logger.With("source", src.Name)

	feed, err := retry.Do(ctx, f.opts.Retry, func(ctx context.Context) (*gofeed.Feed, error) {
		return f.parse(ctx, src.URL)
	})
	if err != nil {
		log.Warn("error parsing feed", "url", src.URL, "error", err)
		return []news.Article{}, &news.FetchError{Source: src.Name, URL: src.URL, Err: err}
	}

	if len(feed.Items) == 0 {
		log.Warn("no items found in feed", "url", src.URL)
		return []news.Article{}, nil
	}

	items := feed.Items[:min(len(feed.Items), f.opts.ItemsPerFeed)]
	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		articles = append(articles, f.toArticle(item, src.Name))
	}

	log.Debug("loaded feed", "items", len(articles), "available", len(feed.Items))
	return articles, nil
}

func (f *Fetcher) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	// gofeed parsers keep per-parse state, so each fetch gets its own.
	parser := gofeed.NewParser()
	parser.Client = f.opts.Client
	parser.UserAgent = f.opts.UserAgent
	return parser.ParseURLWithContext(feedURL, ctx)
}

func (f *Fetcher) toArticle(item *gofeed.Item, source string) news.Article {
	a := news.Article{
		Title:  item.Title,
		Link:   item.Link,
		Source: source,
	}
	if a.Title == "" {
		a.Title = "Untitled"
	}
	if a.Link == "" {
		a.Link = "#"
	}

	switch {
	case item.Published != "":
		a.PubDate = item.Published
		a.Published = parsedOr(item.PublishedParsed, item.Published)
	case item.Updated != "":
		a.PubDate = item.Updated
		a.Published = parsedOr(item.UpdatedParsed, item.Updated)
	default:
		now := f.opts.Now()
		a.PubDate = now.UTC().Format(time.RFC3339)
		a.Published = now
	}

	a.ContentSnippet = snippet.FromHTML(item.Description)
	if a.ContentSnippet == "" {
		a.ContentSnippet = snippet.FromHTML(item.Content)
	}
	return a
}

func parsedOr(parsed *time.Time, raw string) time.Time {
	if parsed != nil {
		return *parsed
	}
	t, _ := news.ParsePubDate(raw)
	return t
}
