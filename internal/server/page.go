package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/quotes"
	"github.com/deusflow/goodnews/internal/snippet"
)

const (
	siteTitle       = "Good News"
	siteDescription = "A small daily selection of good news from around the world"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title    string
	News     []news.Article
	Quote    quotes.Quote
	Feeds    []news.FeedSource
	Year     int
	HasError bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("refresh") {
		s.refresh()
	}

	data := pageData{
		Title: siteTitle,
		Quote: s.deps.Quotes.Current(),
		Feeds: s.deps.News.Sources(),
		Year:  s.deps.Now().Year(),
	}

	items, err := s.deps.News.Selection(r.Context())
	if err != nil {
		s.log.Error("error loading news for page", "error", err)
		data.HasError = true
	}
	for _, a := range items {
		a.ContentSnippet = snippet.Truncate(a.ContentSnippet, s.deps.SnippetLength)
		data.News = append(data.News, a)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.log.Error("rendering index page", "error", err)
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.News.Selection(r.Context())
	if err != nil {
		s.log.Error("error loading news for feed", "error", err)
		http.Error(w, "failed to build feed", http.StatusInternalServerError)
		return
	}

	rss, err := buildFeed(r, items, s.deps.Now()).ToRss()
	if err != nil {
		s.log.Error("rendering rss feed", "error", err)
		http.Error(w, "failed to build feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

func buildFeed(r *http.Request, items []news.Article, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       siteTitle,
		Link:        &feeds.Link{Href: siteURL(r)},
		Description: siteDescription,
		Created:     now,
	}
	for _, a := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.Link},
			Description: a.ContentSnippet,
			Author:      &feeds.Author{Name: a.Source},
			Id:          a.Link,
			Created:     a.PublishedAt(),
		})
	}
	return feed
}

func siteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
