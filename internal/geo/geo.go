// Package geo resolves a client IP address to an approximate location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/goodnews/internal/cache"
)

const (
	DefaultBaseURL  = "https://ipapi.co"
	DefaultTTL      = 24 * time.Hour
	CleanupInterval = time.Hour
)

type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// Fallback is returned whenever a lookup fails.
var Fallback = Location{Lat: 59.3293, Lon: 18.0686, City: "Stockholm", Country: "Sweden"}

type Options struct {
	BaseURL string
	TTL     time.Duration
	Client  *http.Client
	Now     func() time.Time
	Logger  *slog.Logger
	// Limiter, when set, is asked before every request to the API.
	Limiter Limiter
}

// Limiter is satisfied by *ratelimit.Daily.
type Limiter interface {
	Use() error
}

// Locator looks up IP locations with ipapi.co and caches successful answers.
type Locator struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client
	cache   *cache.Cache[Location]
	limiter Limiter
	log     *slog.Logger
}

func NewLocator(opts Options) *Locator {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Locator{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		ttl:     opts.TTL,
		client:  opts.Client,
		cache:   cache.NewWithClock[Location](opts.Now),
		limiter: opts.Limiter,
		log:     opts.Logger,
	}
}

type ipapiResponse struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        string  `json:"city"`
	CountryName string  `json:"country_name"`
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
}

// Lookup never fails: when the API cannot answer it returns Fallback, which
// is not cached.
func (l *Locator) Lookup(ctx context.Context, ip string) Location {
	if loc, ok := l.cache.Get(ip); ok {
		l.log.Debug("ip location cache hit", "ip", ip)
		return loc
	}

	loc, err := l.fetch(ctx, ip)
	if err != nil {
		l.log.Warn("ip location lookup failed, using fallback", "ip", ip, "error", err)
		return Fallback
	}
	l.cache.Set(ip, loc, l.ttl)
	return loc
}

func (l *Locator) fetch(ctx context.Context, ip string) (Location, error) {
	if l.limiter != nil {
		if err := l.limiter.Use(); err != nil {
			return Location{}, err
		}
	}

	endpoint := fmt.Sprintf("%s/%s/json/", l.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("ip api status %d", resp.StatusCode)
	}

	var data ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Location{}, fmt.Errorf("decoding response: %w", err)
	}
	if data.Error {
		return Location{}, fmt.Errorf("ip api error: %s", data.Reason)
	}

	return Location{
		Lat:     data.Latitude,
		Lon:     data.Longitude,
		City:    data.City,
		Country: data.CountryName,
	}, nil
}

// Clear drops every cached location.
func (l *Locator) Clear() {
	l.cache.Clear()
	l.log.Info("ip location cache cleared")
}

// RunCleanup purges expired locations every interval until ctx is done.
func (l *Locator) RunCleanup(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = CleanupInterval
	}
	l.cache.CleanupLoop(ctx, every, func(removed, left int) {
		if removed > 0 {
			l.log.Debug("purged expired ip locations", "removed", removed, "cached", left)
		}
	})
}

// ClientIP returns the originating address of r. Proxy headers are only
// consulted when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
