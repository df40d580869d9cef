// Package config reads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/deusflow/goodnews/internal/logger"
	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/retry"
)

const appName = "goodnews"

type Config struct {
	// HTTP settings
	Port              string
	// Take client IPs from X-Forwarded-For / X-Real-IP
	TrustProxyHeaders bool

	// Feed settings
	FeedsConfigPath    string
	ItemsPerFeed       int
	FetchTimeout       time.Duration // 0 = no per-fetch timeout
	FetchRetryAttempts int
	FetchRetryDelay    time.Duration

	// Aggregation settings
	SimilarityThreshold   float64
	TopArticlesToConsider int
	FinalNewsCount        int
	ContentSnippetLength  int
	SelectionFromFullPool bool

	// Cache settings
	FeedTTL      time.Duration
	SelectionTTL time.Duration
	QuoteTTL     time.Duration
	LocationTTL  time.Duration

	// Weather and location APIs
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	IPAPIBaseURL       string

	// Requests per day to each API. 0 = unlimited
	WeatherDailyLimit int
	GeoDailyLimit     int

	// Logging
	Debug         bool
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func Default() *Config {
	return &Config{
		Port:                  "8080",
		TrustProxyHeaders:     true,
		FeedsConfigPath:       DefaultFeedsPath(),
		ItemsPerFeed:          10,
		FetchRetryAttempts:    1,
		FetchRetryDelay:       2 * time.Second,
		SimilarityThreshold:   news.DefaultSimilarityThreshold,
		TopArticlesToConsider: 30,
		FinalNewsCount:        3,
		ContentSnippetLength:  150,
		FeedTTL:               24 * time.Hour,
		SelectionTTL:          5 * time.Minute,
		QuoteTTL:              5 * time.Minute,
		LocationTTL:           24 * time.Hour,
		OpenWeatherBaseURL:    "https://api.openweathermap.org",
		IPAPIBaseURL:          "https://ipapi.co",
		WeatherDailyLimit:     1000,
		GeoDailyLimit:         1000,
		LogMaxSizeMB:          10,
		LogMaxBackups:         3,
		LogMaxAgeDays:         28,
	}
}

// LoadDotEnv loads variables from .env style files into the environment.
// Variables already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment on top of the defaults.
// Malformed values are reported together with any validation failures.
func Load() (*Config, error) {
	cfg := Default()
	env := &envReader{}

	cfg.Port = env.getString("PORT", cfg.Port)
	cfg.TrustProxyHeaders = env.getBool("TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders)
	cfg.FeedsConfigPath = env.getString("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.ItemsPerFeed = env.getInt("ITEMS_PER_FEED", cfg.ItemsPerFeed)
	cfg.FetchTimeout = env.getDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FetchRetryAttempts = env.getInt("FETCH_RETRY_ATTEMPTS", cfg.FetchRetryAttempts)
	cfg.FetchRetryDelay = env.getDuration("FETCH_RETRY_DELAY", cfg.FetchRetryDelay)

	cfg.SimilarityThreshold = env.getFloat("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.TopArticlesToConsider = env.getInt("TOP_ARTICLES_TO_CONSIDER", cfg.TopArticlesToConsider)
	cfg.FinalNewsCount = env.getInt("FINAL_NEWS_COUNT", cfg.FinalNewsCount)
	cfg.ContentSnippetLength = env.getInt("CONTENT_SNIPPET_LENGTH", cfg.ContentSnippetLength)
	cfg.SelectionFromFullPool = env.getBool("SELECTION_FROM_FULL_POOL", cfg.SelectionFromFullPool)

	cfg.FeedTTL = env.getDuration("FEED_TTL", cfg.FeedTTL)
	cfg.SelectionTTL = env.getDuration("SELECTION_TTL", cfg.SelectionTTL)
	cfg.QuoteTTL = env.getDuration("QUOTE_TTL", cfg.QuoteTTL)
	cfg.LocationTTL = env.getDuration("LOCATION_TTL", cfg.LocationTTL)

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = env.getString("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.IPAPIBaseURL = env.getString("IPAPI_BASE_URL", cfg.IPAPIBaseURL)
	cfg.WeatherDailyLimit = env.getInt("WEATHER_DAILY_LIMIT", cfg.WeatherDailyLimit)
	cfg.GeoDailyLimit = env.getInt("GEO_DAILY_LIMIT", cfg.GeoDailyLimit)

	cfg.Debug = env.getBool("DEBUG", cfg.Debug)
	cfg.LogFile = env.getString("LOG_FILE", cfg.LogFile)
	cfg.LogMaxSizeMB = env.getInt("LOG_MAX_SIZE_MB", cfg.LogMaxSizeMB)
	cfg.LogMaxBackups = env.getInt("LOG_MAX_BACKUPS", cfg.LogMaxBackups)
	cfg.LogMaxAgeDays = env.getInt("LOG_MAX_AGE_DAYS", cfg.LogMaxAgeDays)

	if err := errors.Join(env.err(), cfg.Validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultFeedsPath is the first feeds.yaml found in the XDG config
// directories, else the per-user location.
func DefaultFeedsPath() string {
	rel := filepath.Join(appName, "feeds.yaml")
	if p, err := xdg.SearchConfigFile(rel); err == nil {
		return p
	}
	return filepath.Join(xdg.ConfigHome, rel)
}

func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a port number, got %q", c.Port))
	}
	if c.ItemsPerFeed < 1 {
		errs = append(errs, fmt.Errorf("ITEMS_PER_FEED must be positive"))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must not be negative"))
	}
	if c.FetchRetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("FETCH_RETRY_ATTEMPTS must be at least 1"))
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]"))
	}
	if c.TopArticlesToConsider < 1 {
		errs = append(errs, fmt.Errorf("TOP_ARTICLES_TO_CONSIDER must be positive"))
	}
	if c.FinalNewsCount < 1 {
		errs = append(errs, fmt.Errorf("FINAL_NEWS_COUNT must be positive"))
	}
	if c.ContentSnippetLength < 1 {
		errs = append(errs, fmt.Errorf("CONTENT_SNIPPET_LENGTH must be positive"))
	}
	if c.WeatherDailyLimit < 0 || c.GeoDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("WEATHER_DAILY_LIMIT and GEO_DAILY_LIMIT must not be negative"))
	}
	ttls := []struct {
		name string
		ttl  time.Duration
	}{
		{"FEED_TTL", c.FeedTTL},
		{"SELECTION_TTL", c.SelectionTTL},
		{"QUOTE_TTL", c.QuoteTTL},
		{"LOCATION_TTL", c.LocationTTL},
	}
	for _, t := range ttls {
		if t.ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", t.name))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// News returns the aggregation settings for the given feeds.
func (c *Config) News(sources []news.FeedSource) news.Config {
	src := news.SampledSubset
	if c.SelectionFromFullPool {
		src = news.FullPool
	}
	return news.Config{
		Sources:               sources,
		SimilarityThreshold:   c.SimilarityThreshold,
		TopArticlesToConsider: c.TopArticlesToConsider,
		FinalNewsCount:        c.FinalNewsCount,
		FeedTTL:               c.FeedTTL,
		SelectionTTL:          c.SelectionTTL,
		SelectionSource:       src,
	}
}

func (c *Config) Retry() retry.Config {
	return retry.Config{
		MaxAttempts: c.FetchRetryAttempts,
		Delay:       c.FetchRetryDelay,
		Backoff:     true,
	}
}

func (c *Config) Logger() logger.Options {
	return logger.Options{
		Debug:      c.Debug,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}

// envReader reads typed values and remembers every malformed one.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) getString(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) getInt(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *envReader) getFloat(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (r *envReader) getBool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

// getDuration accepts Go durations ("90s", "24h"); a bare number is seconds.
func (r *envReader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
