package quotes

import (
	"testing"
	"time"
)

func TestCurrentIsMemoisedForTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	next := 0
	r := NewRotator(nil, 5*time.Minute,
		WithClock(func() time.Time { return now }),
		WithRand(func(n int) int { next++; return next % n }),
	)

	first := r.Current()
	now = now.Add(4 * time.Minute)
	if got := r.Current(); got != first {
		t.Errorf("quote changed within TTL: %q -> %q", first.Text, got.Text)
	}
	if next != 1 {
		t.Errorf("expected one draw, got %d", next)
	}

	now = now.Add(time.Minute)
	if got := r.Current(); got == first {
		t.Errorf("quote should rotate after TTL")
	}
	if next != 2 {
		t.Errorf("expected a second draw, got %d", next)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := NewRotator(nil, 0)
	all := r.All()
	if len(all) != len(defaultQuotes) {
		t.Fatalf("expected %d quotes, got %d", len(defaultQuotes), len(all))
	}
	all[0].Text = "changed"
	if r.All()[0].Text == "changed" {
		t.Error("All should return a copy")
	}
}

func TestCustomList(t *testing.T) {
	r := NewRotator([]Quote{{Text: "only one", Author: "me"}}, time.Minute)
	if q := r.Current(); q.Text != "only one" || q.Author != "me" {
		t.Errorf("unexpected quote %+v", q)
	}
}
