package scoring

import (
	"math"
	"time"

	"newscollector/internal/core"
)

// PopularityResult carries the popularity axis and the trending velocity.
type PopularityResult struct {
	Popularity       float64
	TrendingVelocity float64
}

// PopularityScorer rates engagement relative to the batch, with a
// freshness fallback when a provider reports no engagement at all.
type PopularityScorer struct {
	viewWeight    float64
	shareWeight   float64
	commentWeight float64
	halfLife      time.Duration
	now           func() time.Time
}

// PopularityOption configures a PopularityScorer.
type PopularityOption func(*PopularityScorer)

// WithHalfLife sets the freshness-decay half-life (default 24h).
func WithHalfLife(d time.Duration) PopularityOption {
	return func(s *PopularityScorer) {
		if d > 0 {
			s.halfLife = d
		}
	}
}

// WithClock injects the time source, making decay deterministic in tests.
func WithClock(now func() time.Time) PopularityOption {
	return func(s *PopularityScorer) { s.now = now }
}

// NewPopularityScorer builds a scorer with the 0.40/0.35/0.25
// views/shares/comments weighting.
func NewPopularityScorer(opts ...PopularityOption) *PopularityScorer {
	s := &PopularityScorer{
		viewWeight:    0.40,
		shareWeight:   0.35,
		commentWeight: 0.25,
		halfLife:      24 * time.Hour,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates one article against the batch engagement maxima. Articles
// with no engagement metrics at all fall back to freshness decay.
func (s *PopularityScorer) Score(a *core.Article, batch *Batch) PopularityResult {
	var popularity float64
	if a.Engagement() {
		popularity = s.viewWeight*normalize(a.ViewCount, batch.MaxViews) +
			s.shareWeight*normalize(a.ShareCount, batch.MaxShares) +
			s.commentWeight*normalize(a.CommentCount, batch.MaxComments)
	} else {
		popularity = s.freshness(a)
	}

	return PopularityResult{
		Popularity:       math.Min(1, popularity),
		TrendingVelocity: s.trendingVelocity(a),
	}
}

// freshness decays exponentially from the publish instant with the
// configured half-life. A missing timestamp scores 0.3.
func (s *PopularityScorer) freshness(a *core.Article) float64 {
	if a.PublishedAt.IsZero() {
		return 0.3
	}
	hours := math.Max(0, s.now().Sub(a.PublishedAt).Hours())
	return math.Pow(0.5, hours/s.halfLife.Hours())
}

// trendingVelocity is weighted engagement per hour since publication,
// normalised so 10 000/h maps to 1.0.
func (s *PopularityScorer) trendingVelocity(a *core.Article) float64 {
	if a.PublishedAt.IsZero() {
		return 0
	}

	engagement := count(a.ViewCount) + 3*count(a.ShareCount) + 2*count(a.CommentCount)
	if engagement == 0 {
		return 0
	}

	hours := math.Max(1, s.now().Sub(a.PublishedAt).Hours())
	return math.Min(1, float64(engagement)/hours/10000)
}

func normalize(value *int64, max float64) float64 {
	if value == nil || max <= 0 {
		return 0
	}
	return float64(*value) / max
}

func count(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}
