// Package server exposes the aggregator, quotes, location and weather over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/goodnews/internal/geo"
	"github.com/deusflow/goodnews/internal/metrics"
	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/quotes"
	"github.com/deusflow/goodnews/internal/weather"
)

// NewsService is the part of news.Aggregator the handlers use.
type NewsService interface {
	Selection(ctx context.Context) ([]news.Article, error)
	ClearCaches()
	CacheInfo() news.CacheInfo
	Sources() []news.FeedSource
}

type Locator interface {
	Lookup(ctx context.Context, ip string) geo.Location
	Clear()
}

type WeatherService interface {
	Mood(ctx context.Context, lat, lon float64) weather.Result
}

type QuoteSource interface {
	Current() quotes.Quote
	All() []quotes.Quote
}

// UsageReporter is satisfied by *ratelimit.Daily.
type UsageReporter interface {
	GetStats() map[string]interface{}
}

type Deps struct {
	News    NewsService
	Geo     Locator
	Weather WeatherService
	Quotes  QuoteSource
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// APILimits are reported under "api_limits" on /metrics.
	APILimits []UsageReporter
	// TrustProxy makes client IPs come from X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	// SnippetLength caps article snippets on the HTML page.
	SnippetLength int
	Now           func() time.Time
}

type Server struct {
	deps Deps
	log  *slog.Logger
	mux  *http.ServeMux
}

func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.Global
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.SnippetLength <= 0 {
		d.SnippetLength = 150
	}

	s := &Server{deps: d, log: d.Logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /feed.xml", s.handleFeed)
	s.mux.HandleFunc("GET /api/news", s.handleNews)
	s.mux.HandleFunc("GET /api/news/cache", s.handleCacheInfo)
	s.mux.HandleFunc("GET /api/quote", s.handleQuote)
	s.mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	s.mux.HandleFunc("GET /api/weather/location", s.handleLocation)
	s.mux.HandleFunc("GET /api/weather/sunshine", s.handleSunshine)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				s.log.Error("panic serving request", "path", r.URL.Path, "panic", p)
				http.Error(rec, "internal server error", http.StatusInternalServerError)
			}
			s.log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("writing json response", "error", err)
	}
}

// refresh drops every cached answer so the next reads go upstream.
func (s *Server) refresh() {
	s.deps.News.ClearCaches()
	s.deps.Geo.Clear()
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
