package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/deusflow/goodnews/internal/geo"
	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/quotes"
	"github.com/deusflow/goodnews/internal/weather"
)

// isoMillis matches the timestamp layout browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type newsResponse struct {
	Success   bool           `json:"success"`
	News      []news.Article `json:"news"`
	Refreshed bool           `json:"refreshed"`
	Timestamp string         `json:"timestamp"`
}

type newsErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	News    []news.Article `json:"news"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Has("refresh")
	if refresh {
		s.refresh()
	}

	items, err := s.deps.News.Selection(r.Context())
	if err != nil {
		s.log.Error("error fetching news", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, newsErrorResponse{
			Error: "Failed to fetch news",
			News:  []news.Article{},
		})
		return
	}
	if items == nil {
		items = []news.Article{}
	}

	s.writeJSON(w, http.StatusOK, newsResponse{
		Success:   true,
		News:      items,
		Refreshed: refresh,
		Timestamp: s.deps.Now().UTC().Format(isoMillis),
	})
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.News.CacheInfo())
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Quotes.Current())
}

type quotesResponse struct {
	Success bool           `json:"success"`
	Quotes  []quotes.Quote `json:"quotes"`
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, quotesResponse{Success: true, Quotes: s.deps.Quotes.All()})
}

type locationResponse struct {
	Success     bool                `json:"success"`
	Coordinates weather.Coordinates `json:"coordinates"`
	City        string              `json:"city,omitempty"`
	Country     string              `json:"country,omitempty"`
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	loc := s.deps.Geo.Lookup(r.Context(), geo.ClientIP(r, s.deps.TrustProxy))
	s.writeJSON(w, http.StatusOK, locationResponse{
		Success:     true,
		Coordinates: weather.Coordinates{Lat: loc.Lat, Lon: loc.Lon},
		City:        loc.City,
		Country:     loc.Country,
	})
}

type sunshineResponse struct {
	Success bool `json:"success"`
	weather.Result
}

func (s *Server) handleSunshine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if latRaw == "" || lonRaw == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing coordinates"})
		return
	}

	lat, latErr := parseCoordinate(latRaw)
	lon, lonErr := parseCoordinate(lonRaw)
	if latErr != nil || lonErr != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid coordinates"})
		return
	}

	res := s.deps.Weather.Mood(r.Context(), lat, lon)
	s.writeJSON(w, http.StatusOK, sunshineResponse{Success: true, Result: res})
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.deps.Metrics.GetStats()

	status, code := "ok", http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status, code = "error", http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
		"time":       s.deps.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := s.deps.Metrics.GetStats()
	if len(s.deps.APILimits) > 0 {
		limits := make([]map[string]interface{}, 0, len(s.deps.APILimits))
		for _, l := range s.deps.APILimits {
			limits = append(limits, l.GetStats())
		}
		stats["api_limits"] = limits
	}
	s.writeJSON(w, http.StatusOK, stats)
}
