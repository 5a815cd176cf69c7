// Package system exercises the real-time clock adapter.
package system

import (
	"regexp"
	"testing"
	"time"
)

// TestClockNowUTC ensures the clock returns UTC timestamps.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	clk := New()

	before := time.Now().UTC().Add(-time.Second)
	got := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
	if got.Before(before) || got.After(after) {
		t.Fatalf("expected %v to be between %v and %v", got, before, after)
	}
}

// TestClockTodayFormat checks the calendar-day string shape.
func TestClockTodayFormat(t *testing.T) {
	t.Parallel()

	clk := New()
	today := clk.Today()
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(today) {
		t.Fatalf("expected YYYY-MM-DD, got %q", today)
	}
}

// TestClockTodayMatchesSeoul recomputes the Seoul day independently.
func TestClockTodayMatchesSeoul(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skip("no tzdata on host")
	}

	clk := New()
	// Two reads straddle midnight only in a vanishingly small window, so
	// accept either day.
	first := time.Now().In(loc).Format("2006-01-02")
	got := clk.Today()
	second := time.Now().In(loc).Format("2006-01-02")
	if got != first && got != second {
		t.Fatalf("expected %q or %q, got %q", first, second, got)
	}
}
