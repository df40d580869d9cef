package cache

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached value together with the instant it was stored.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
}

// Slot holds at most one value with a fixed TTL. Concurrent misses share a
// single computation; Clear discards the value and detaches any computation
// already in flight so its result is not stored.
type Slot[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	entry *Entry[T]
	gen   uint64

	group singleflight.Group
}

func NewSlot[T any](ttl time.Duration, now func() time.Time) *Slot[T] {
	if now == nil {
		now = time.Now
	}
	return &Slot[T]{ttl: ttl, now: now}
}

func (s *Slot[T]) TTL() time.Duration {
	return s.ttl
}

// Entry returns the stored entry whether or not it has expired.
func (s *Slot[T]) Entry() (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return Entry[T]{}, false
	}
	return *s.entry, true
}

// Fresh returns the stored entry if it is younger than the TTL.
func (s *Slot[T]) Fresh() (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freshLocked()
}

func (s *Slot[T]) freshLocked() (Entry[T], bool) {
	if s.entry == nil || s.now().Sub(s.entry.Timestamp) >= s.ttl {
		return Entry[T]{}, false
	}
	return *s.entry, true
}

// Get returns the fresh value or runs compute to produce and store a new one.
// hit reports whether the value came from the slot without waiting on a
// computation.
func (s *Slot[T]) Get(compute func() (T, error)) (value T, hit bool, err error) {
	s.mu.RLock()
	e, ok := s.freshLocked()
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return e.Data, true, nil
	}

	v, err, _ := s.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		if e, ok := s.Fresh(); ok {
			return e.Data, nil
		}
		data, err := compute()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.entry = &Entry[T]{Data: data, Timestamp: s.now()}
		}
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	value, _ = v.(T)
	return value, false, nil
}

func (s *Slot[T]) Clear() {
	s.mu.Lock()
	s.entry = nil
	s.gen++
	s.mu.Unlock()
}
