package ratelimit

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newDaily(max int) (*Daily, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDaily("ipapi", max, WithClock(c.now), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return d, c
}

func TestDailyLimit(t *testing.T) {
	d, _ := newDaily(3)

	for i := 0; i < 3; i++ {
		if err := d.Use(); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	err := d.Use()
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("fourth request err = %v, want ErrLimitReached", err)
	}
	if stats := d.GetStats(); stats["denied"] != 1 || stats["used"] != 3 || stats["remaining"] != 0 {
		t.Errorf("stats = %v", stats)
	}
}

func TestDailyReset(t *testing.T) {
	d, c := newDaily(1)

	if err := d.Use(); err != nil {
		t.Fatal(err)
	}
	if err := d.Use(); err == nil {
		t.Fatal("expected limit error")
	}

	c.advance(23 * time.Hour)
	if err := d.Use(); err == nil {
		t.Fatal("limit reset too early")
	}

	c.advance(2 * time.Hour)
	if err := d.Use(); err != nil {
		t.Fatalf("after reset: %v", err)
	}
	if got := d.GetStats()["remaining"]; got != 0 {
		t.Errorf("remaining = %v, want 0", got)
	}
}

func TestDailyUnlimited(t *testing.T) {
	d, _ := newDaily(0)
	for i := 0; i < 1000; i++ {
		if err := d.Use(); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.GetStats()["remaining"]; got != -1 {
		t.Errorf("remaining = %v, want -1", got)
	}
}

func TestDailyConcurrent(t *testing.T) {
	d, _ := newDaily(50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Use() == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}
