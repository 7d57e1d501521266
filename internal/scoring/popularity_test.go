package scoring

import (
	"math"
	"testing"
	"time"

	"newscollector/internal/core"
)

func i64(v int64) *int64 { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEngagementNormalisedAgainstBatch(t *testing.T) {
	batch := []core.Article{
		{ID: "a", ViewCount: i64(1000), ShareCount: i64(100), CommentCount: i64(50)},
		{ID: "b", ViewCount: i64(500), ShareCount: i64(50), CommentCount: i64(25)},
	}
	agg := NewBatch(batch)
	s := NewPopularityScorer()

	top := s.Score(&batch[0], agg).Popularity
	if math.Abs(top-1.0) > 1e-9 {
		t.Errorf("batch leader should score 1.0, got %f", top)
	}

	half := s.Score(&batch[1], agg).Popularity
	if math.Abs(half-0.5) > 1e-9 {
		t.Errorf("half the engagement should score 0.5, got %f", half)
	}
}

func TestFreshnessFallbackAtOneHalfLife(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s := NewPopularityScorer(WithClock(fixedClock(now)))

	a := core.Article{ID: "a", PublishedAt: now.Add(-24 * time.Hour)}
	r := s.Score(&a, NewBatch(nil))
	if math.Abs(r.Popularity-0.5) > 1e-9 {
		t.Errorf("24h old article with no metrics should score 0.5, got %f", r.Popularity)
	}
	if r.TrendingVelocity != 0 {
		t.Errorf("no engagement means zero velocity, got %f", r.TrendingVelocity)
	}
}

func TestFreshnessMissingTimestamp(t *testing.T) {
	s := NewPopularityScorer()
	a := core.Article{ID: "a"}
	if got := s.Score(&a, NewBatch(nil)).Popularity; got != 0.3 {
		t.Errorf("missing timestamp should fall back to 0.3, got %f", got)
	}
}

func TestReportedZeroIsNotMissing(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s := NewPopularityScorer(WithClock(fixedClock(now)))

	// A provider reporting zero views is engagement data, not absence of it.
	a := core.Article{ID: "a", ViewCount: i64(0), PublishedAt: now.Add(-time.Hour)}
	if got := s.Score(&a, NewBatch([]core.Article{a})).Popularity; got != 0 {
		t.Errorf("reported zero engagement should score 0, not fall back: got %f", got)
	}
}

func TestTrendingVelocity(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s := NewPopularityScorer(WithClock(fixedClock(now)))

	// 10000 weighted engagement over 1h maps to exactly 1.0.
	a := core.Article{
		ID:          "a",
		ViewCount:   i64(5000),
		ShareCount:  i64(1000), // ×3 = 3000
		CommentCount: i64(1000), // ×2 = 2000
		PublishedAt: now.Add(-time.Hour),
	}
	got := s.Score(&a, NewBatch([]core.Article{a})).TrendingVelocity
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected velocity 1.0, got %f", got)
	}

	// Older articles divide by their age.
	b := a
	b.PublishedAt = now.Add(-10 * time.Hour)
	got = s.Score(&b, NewBatch([]core.Article{b})).TrendingVelocity
	if math.Abs(got-0.1) > 1e-9 {
		t.Errorf("expected velocity 0.1 after 10h, got %f", got)
	}
}

func TestVelocityClipped(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s := NewPopularityScorer(WithClock(fixedClock(now)))
	a := core.Article{ID: "a", ViewCount: i64(10_000_000), PublishedAt: now.Add(-time.Minute)}
	if got := s.Score(&a, NewBatch([]core.Article{a})).TrendingVelocity; got != 1.0 {
		t.Errorf("velocity must clip to 1.0, got %f", got)
	}
}
