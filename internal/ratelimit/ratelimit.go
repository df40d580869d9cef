// Package ratelimit keeps outbound API calls within a daily request budget.
package ratelimit

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const window = 24 * time.Hour

// ErrLimitReached is wrapped by Use when the budget for the window is spent.
var ErrLimitReached = errors.New("daily request limit reached")

// Daily counts requests to one API and resets the count every 24 hours.
// A max of zero or less means unlimited.
type Daily struct {
	mu        sync.Mutex
	name      string
	max       int
	count     int
	denied    int
	resetTime time.Time
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*Daily)

func WithClock(now func() time.Time) Option {
	return func(d *Daily) { d.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Daily) { d.log = l }
}

func NewDaily(name string, max int, opts ...Option) *Daily {
	d := &Daily{
		name: name,
		max:  max,
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.resetTime = d.now().Add(window)
	return d
}

// Use takes one request from the budget.
func (d *Daily) Use() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.checkReset()

	if d.max > 0 && d.count >= d.max {
		d.denied++
		if d.denied == 1 {
			d.log.Warn("request limit reached", "api", d.name, "used", d.count, "limit", d.max, "reset", d.resetTime)
		}
		return fmt.Errorf("%s: %w (%d/%d)", d.name, ErrLimitReached, d.count, d.max)
	}

	d.count++
	d.log.Debug("api usage", "api", d.name, "used", d.count, "limit", d.max)
	return nil
}

// GetStats reports usage in the current window. "remaining" is -1 when
// unlimited.
func (d *Daily) GetStats() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.checkReset()
	remaining := -1
	if d.max > 0 {
		remaining = d.max - d.count
	}
	return map[string]interface{}{
		"api":        d.name,
		"used":       d.count,
		"limit":      d.max,
		"remaining":  remaining,
		"denied":     d.denied,
		"reset_time": d.resetTime,
	}
}

// checkReset starts a new window once the current one has passed.
func (d *Daily) checkReset() {
	now := d.now()
	if !now.After(d.resetTime) {
		return
	}
	if d.count > 0 || d.denied > 0 {
		d.log.Info("resetting request limit", "api", d.name, "used", d.count, "denied", d.denied)
	}
	d.count = 0
	d.denied = 0
	d.resetTime = now.Add(window)
}
