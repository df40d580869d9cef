// Package quotes serves a rotating mood quote.
package quotes

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/deusflow/goodnews/internal/cache"
)

const DefaultTTL = 5 * time.Minute

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// Rotator hands out one random quote and keeps it for the TTL.
type Rotator struct {
	quotes []Quote
	slot   *cache.Slot[Quote]

	mu   sync.Mutex
	intN func(n int) int
}

type Option func(*Rotator)

func WithClock(now func() time.Time) Option {
	return func(r *Rotator) { r.slot = cache.NewSlot[Quote](r.slot.TTL(), now) }
}

// WithRand replaces the random index source, mainly for tests.
func WithRand(intN func(n int) int) Option {
	return func(r *Rotator) { r.intN = intN }
}

// NewRotator rotates through list, or the built-in quotes when list is empty.
func NewRotator(list []Quote, ttl time.Duration, opts ...Option) *Rotator {
	if len(list) == 0 {
		list = defaultQuotes
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Rotator{
		quotes: slices.Clone(list),
		slot:   cache.NewSlot[Quote](ttl, nil),
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the memoised quote, drawing a new one once it is older
// than the TTL.
func (r *Rotator) Current() Quote {
	q, _, _ := r.slot.Get(func() (Quote, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.quotes[r.intN(len(r.quotes))], nil
	})
	return q
}

// All returns a copy of every quote.
func (r *Rotator) All() []Quote {
	return slices.Clone(r.quotes)
}
