package ingest

import (
	"testing"
	"time"
)

func TestRateCounterDailyQuota(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rc := newRateCounter(0, 0, 3, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if _, ok := rc.allow(); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if _, ok := rc.allow(); ok {
		t.Fatal("fourth request should exhaust the daily quota")
	}
	if got := rc.remainingToday(); got != 0 {
		t.Errorf("expected 0 remaining, got %d", got)
	}
}

func TestRateCounterDailyRollover(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	rc := newRateCounter(0, 0, 1, func() time.Time { return now })

	if _, ok := rc.allow(); !ok {
		t.Fatal("first request should be allowed")
	}
	if _, ok := rc.allow(); ok {
		t.Fatal("quota should be spent")
	}

	// Crossing midnight resets the daily counter.
	now = time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC)
	if _, ok := rc.allow(); !ok {
		t.Fatal("quota should reset after the daily rollover")
	}
}

func TestRateCounterMinuteWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rc := newRateCounter(2, 0, 0, func() time.Time { return now })

	if wait, _ := rc.allow(); wait != 0 {
		t.Errorf("first request should not wait, got %v", wait)
	}
	if wait, _ := rc.allow(); wait != 0 {
		t.Errorf("second request should not wait, got %v", wait)
	}
	if wait, _ := rc.allow(); wait <= 0 {
		t.Error("third request within the minute should be told to wait")
	}

	// A minute later the window is fresh.
	now = now.Add(61 * time.Second)
	if wait, _ := rc.allow(); wait != 0 {
		t.Errorf("request after the window should not wait, got %v", wait)
	}
}

func TestMatchesKeywords(t *testing.T) {
	tests := []struct {
		title, desc string
		keywords    []string
		want        bool
	}{
		{"Economy update", "markets rally", nil, true},
		{"Economy update", "markets rally", []string{"economy"}, true},
		{"Politics today", "cabinet reshuffle", []string{"ECONOMY"}, false},
		{"Politics today", "economy mentioned here", []string{"economy"}, true},
		{"제목", "반도체 관련 내용", []string{"반도체"}, true},
	}
	for _, tt := range tests {
		if got := matchesKeywords(tt.title, tt.desc, tt.keywords); got != tt.want {
			t.Errorf("matchesKeywords(%q, %q, %v) = %v, want %v", tt.title, tt.desc, tt.keywords, got, tt.want)
		}
	}
}

func TestRecordIDStable(t *testing.T) {
	a := recordID("src", "https://example.com/a")
	b := recordID("src", "https://example.com/a")
	c := recordID("other", "https://example.com/a")
	if a != b {
		t.Error("record id must be stable for the same source and url")
	}
	if a == c {
		t.Error("record id must differ across sources")
	}
}

func TestStripTags(t *testing.T) {
	if got := stripTags("<p>Hello <b>world</b></p>"); got != "Hello world" {
		t.Errorf("stripTags = %q", got)
	}
	if got := stripTags("plain text"); got != "plain text" {
		t.Errorf("stripTags on plain text = %q", got)
	}
}
