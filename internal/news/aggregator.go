package news

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/deusflow/goodnews/internal/cache"
	"github.com/deusflow/goodnews/internal/metrics"
)

// SelectionSource chooses which articles the selection tier re-samples.
type SelectionSource int

const (
	// SampledSubset re-samples the diverse subset stored by the pool tier.
	SampledSubset SelectionSource = iota
	// FullPool re-samples the whole deduplicated, truncated pool.
	FullPool
)

func (s SelectionSource) String() string {
	if s == FullPool {
		return "full-pool"
	}
	return "sampled-subset"
}

// Config holds the aggregation tunables.
type Config struct {
	Sources               []FeedSource
	SimilarityThreshold   float64
	TopArticlesToConsider int
	FinalNewsCount        int
	FeedTTL               time.Duration
	SelectionTTL          time.Duration
	SelectionSource       SelectionSource
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:   DefaultSimilarityThreshold,
		TopArticlesToConsider: 30,
		FinalNewsCount:        3,
		FeedTTL:               24 * time.Hour,
		SelectionTTL:          5 * time.Minute,
		SelectionSource:       SampledSubset,
	}
}

// aggregate is what the pool tier stores for one fetch cycle.
type aggregate struct {
	Pool    []Article
	Sampled []Article
}

// Aggregator fetches the configured feeds and serves a small selection of
// articles from two caches: an expensive pool tier that holds the result of
// a full fetch cycle and a cheap selection tier that re-samples it.
type Aggregator struct {
	cfg     Config
	fetcher Fetcher

	now     func() time.Time
	rng     Rand
	metrics *metrics.Metrics
	log     *slog.Logger

	pool      *cache.Slot[aggregate]
	selection *cache.Slot[[]Article]
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithRand(r Rand) Option {
	return func(a *Aggregator) { a.rng = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(fetcher Fetcher, cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:     cfg,
		fetcher: fetcher,
		now:     time.Now,
		rng:     DefaultRand,
		metrics: metrics.New(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.rng = &lockedRand{r: a.rng}
	a.pool = cache.NewSlot[aggregate](cfg.FeedTTL, a.now)
	a.selection = cache.NewSlot[[]Article](cfg.SelectionTTL, a.now)
	return a
}

func (a *Aggregator) Sources() []FeedSource {
	return slices.Clone(a.cfg.Sources)
}

// Pool returns the diverse subset of the latest fetch cycle, running a new
// cycle when the pool tier is empty or older than FeedTTL.
func (a *Aggregator) Pool(ctx context.Context) ([]Article, error) {
	agg, err := a.aggregated(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.Sampled), nil
}

// Selection returns the articles to show. It is re-sampled from the pool tier
// when empty or older than SelectionTTL.
func (a *Aggregator) Selection(ctx context.Context) ([]Article, error) {
	items, hit, err := a.selection.Get(func() ([]Article, error) {
		agg, err := a.aggregated(ctx)
		if err != nil {
			return nil, err
		}
		from := agg.Sampled
		if a.cfg.SelectionSource == FullPool {
			from = agg.Pool
		}
		return RandomItems(from, a.cfg.FinalNewsCount, a.rng), nil
	})
	a.metrics.RecordCacheAccess(metrics.TierSelection, hit)
	if err != nil {
		return nil, fmt.Errorf("selecting news: %w", err)
	}
	return slices.Clone(items), nil
}

// ClearCaches empties both tiers. A fetch cycle already in flight still
// answers its waiting callers but its result is not stored.
func (a *Aggregator) ClearCaches() {
	a.pool.Clear()
	a.selection.Clear()
	a.metrics.IncrementCacheClears()
	a.log.Info("news caches cleared")
}

func (a *Aggregator) aggregated(ctx context.Context) (aggregate, error) {
	// The cycle outlives the request that triggered it; other readers share
	// its result.
	cycleCtx := context.WithoutCancel(ctx)
	agg, hit, err := a.pool.Get(func() (aggregate, error) {
		return a.fetchCycle(cycleCtx), nil
	})
	a.metrics.RecordCacheAccess(metrics.TierPool, hit)
	if err != nil {
		return aggregate{}, fmt.Errorf("aggregating feeds: %w", err)
	}
	return agg, nil
}

func (a *Aggregator) fetchCycle(ctx context.Context) aggregate {
	start := a.now()
	a.log.Info("fetching feeds", "sources", len(a.cfg.Sources))

	results := FetchAll(ctx, a.fetcher, a.cfg.Sources)

	var merged []Article
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.metrics.RecordFetch(0, true)
			a.log.Warn("feed skipped", "source", r.Source.Name, "error", r.Err)
			continue
		}
		a.metrics.RecordFetch(len(r.Articles), false)
		merged = append(merged, r.Articles...)
	}

	unique := FilterDuplicates(merged, a.cfg.SimilarityThreshold)
	a.metrics.AddDuplicatesFiltered(len(merged) - len(unique))

	SortByRecency(unique)
	if len(unique) > a.cfg.TopArticlesToConsider {
		unique = unique[:a.cfg.TopArticlesToConsider]
	}
	sampled := DiverseSample(unique, a.cfg.FinalNewsCount, a.rng)

	a.metrics.RecordAggregation(a.now().Sub(start))
	if len(results) > 0 && failed == len(results) {
		a.metrics.SetError("all feeds failed")
	} else {
		a.metrics.SetLastRun()
	}

	a.log.Info("aggregated feeds",
		"sources", len(results),
		"failed", failed,
		"articles", len(merged),
		"unique", len(unique),
		"selected", len(sampled),
	)
	return aggregate{Pool: unique, Sampled: sampled}
}

// TierInfo describes one cache tier.
type TierInfo struct {
	IsCached    bool     `json:"isCached"`
	ItemCount   int      `json:"itemCount"`
	PoolSize    int      `json:"poolSize,omitempty"`
	AgeMs       int64    `json:"ageMs"`
	RemainingMs int64    `json:"remainingMs"`
	Sources     []string `json:"sources,omitempty"`
	Message     string   `json:"message,omitempty"`
}

type CacheInfo struct {
	FeedCache      TierInfo `json:"feedCache"`
	SelectionCache TierInfo `json:"selectionCache"`
}

// CacheInfo reports what each tier currently holds. Expired entries are still
// reported, with no time remaining, until they are replaced.
func (a *Aggregator) CacheInfo() CacheInfo {
	now := a.now()
	var info CacheInfo

	if e, ok := a.pool.Entry(); ok {
		age := now.Sub(e.Timestamp)
		info.FeedCache = TierInfo{
			IsCached:    true,
			ItemCount:   len(e.Data.Sampled),
			PoolSize:    len(e.Data.Pool),
			AgeMs:       age.Milliseconds(),
			RemainingMs: max(0, a.pool.TTL()-age).Milliseconds(),
			Sources:     distinctSources(e.Data.Sampled),
		}
	} else {
		info.FeedCache = TierInfo{Message: "No feed cache"}
	}

	if e, ok := a.selection.Entry(); ok {
		age := now.Sub(e.Timestamp)
		info.SelectionCache = TierInfo{
			IsCached:    true,
			ItemCount:   len(e.Data),
			AgeMs:       age.Milliseconds(),
			RemainingMs: max(0, a.selection.TTL()-age).Milliseconds(),
		}
	} else {
		info.SelectionCache = TierInfo{Message: "No selection cache"}
	}

	return info
}

func distinctSources(items []Article) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.Source] {
			seen[it.Source] = true
			out = append(out, it.Source)
		}
	}
	return out
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
