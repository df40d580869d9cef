package metrics

import (
	"sync"
	"time"
)

// Tier names the two aggregation cache tiers.
type Tier string

const (
	TierPool      Tier = "pool"
	TierSelection Tier = "selection"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedFetches        int64
	FeedFailures       int64
	ArticlesFetched    int64
	DuplicatesFiltered int64
	AggregationRuns    int64
	CacheHits          map[Tier]int64
	CacheMisses        map[Tier]int64
	CacheClears        int64

	// Timings
	LastAggregationTime    time.Duration
	AverageAggregationTime time.Duration
	TotalAggregationTime   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{
		CacheHits:   make(map[Tier]int64),
		CacheMisses: make(map[Tier]int64),
		IsHealthy:   true,
	}
}

var Global = New()

func (m *Metrics) RecordFetch(articles int, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFetches++
	if failed {
		m.FeedFailures++
		return
	}
	m.ArticlesFetched += int64(articles)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) RecordCacheAccess(tier Tier, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits[tier]++
	} else {
		m.CacheMisses[tier]++
	}
}

func (m *Metrics) IncrementCacheClears() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheClears++
}

func (m *Metrics) RecordAggregation(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AggregationRuns++
	m.LastAggregationTime = duration
	m.TotalAggregationTime += duration
	m.AverageAggregationTime = m.TotalAggregationTime / time.Duration(m.AggregationRuns)
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feed_fetches":                m.FeedFetches,
		"feed_failures":               m.FeedFailures,
		"articles_fetched":            m.ArticlesFetched,
		"duplicates_filtered":         m.DuplicatesFiltered,
		"aggregation_runs":            m.AggregationRuns,
		"pool_cache_hits":             m.CacheHits[TierPool],
		"pool_cache_misses":           m.CacheMisses[TierPool],
		"selection_cache_hits":        m.CacheHits[TierSelection],
		"selection_cache_misses":      m.CacheMisses[TierSelection],
		"cache_clears":                m.CacheClears,
		"last_aggregation_time_ms":    m.LastAggregationTime.Milliseconds(),
		"average_aggregation_time_ms": m.AverageAggregationTime.Milliseconds(),
		"last_run_time":               formatTime(m.LastRunTime),
		"last_error_time":             formatTime(m.LastErrorTime),
		"last_error":                  m.LastError,
		"is_healthy":                  m.IsHealthy,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
