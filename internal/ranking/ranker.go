// Package ranking combines the per-axis scores under a preset, applies the
// policy filter and the source-diversity cap, and emits the final Top-N.
package ranking

import (
	"math"
	"sort"
	"time"

	"newscollector/internal/core"
	"newscollector/internal/integrity"
	"newscollector/internal/logger"
	"newscollector/internal/query"
	"newscollector/internal/registry"
	"newscollector/internal/scoring"
)

// Policy flag names. The filter attaches only FlagSuspiciousCredibility, to
// articles it keeps; articles failing the integrity or spam rule are dropped
// and carry no flag.
const (
	FlagLowIntegrity          = "low_integrity"
	FlagSpamDetected          = "spam_detected"
	FlagSuspiciousCredibility = "suspicious_credibility"
)

// Weights is one preset's weight tuple; the four weights sum to 1.
type Weights struct {
	Popularity  float64
	Relevance   float64
	Quality     float64
	Credibility float64
}

// defaultWeights apply when no preset matches.
var defaultWeights = Weights{0.25, 0.25, 0.25, 0.25}

// presets maps each ranking preset to its weight tuple.
var presets = map[string]Weights{
	query.PresetQuality:  {Popularity: 0.15, Relevance: 0.30, Quality: 0.40, Credibility: 0.15},
	query.PresetTrending: {Popularity: 0.50, Relevance: 0.10, Quality: 0.20, Credibility: 0.20},
	query.PresetCredible: {Popularity: 0.10, Relevance: 0.20, Quality: 0.20, Credibility: 0.50},
	query.PresetLatest:   {Popularity: 0.10, Relevance: 0.20, Quality: 0.30, Credibility: 0.40},
}

// PresetWeights resolves a preset name, falling back to equal weights.
func PresetWeights(preset string) Weights {
	if w, ok := presets[preset]; ok {
		return w
	}
	return defaultWeights
}

// Options tunes the ranker's thresholds.
type Options struct {
	IntegrityThreshold   float64 // drop below this (default 0.5)
	CredibilityThreshold float64 // flag below this (default 0.6)
	MaxSameSource        int     // diversity cap (default 3)
	Clock                func() time.Time
}

// Ranker scores, filters, diversifies and orders one article batch.
type Ranker struct {
	integrityChecker *integrity.Checker
	credibility      *scoring.CredibilityScorer
	popularity       *scoring.PopularityScorer
	relevance        *scoring.RelevanceScorer

	integrityThreshold   float64
	credibilityThreshold float64
	maxSameSource        int
}

// New builds a Ranker. The registry may be nil; it only refines source
// trust scores.
func New(reg *registry.Registry, opts Options) *Ranker {
	if opts.IntegrityThreshold == 0 {
		opts.IntegrityThreshold = 0.5
	}
	if opts.CredibilityThreshold == 0 {
		opts.CredibilityThreshold = 0.6
	}
	if opts.MaxSameSource == 0 {
		opts.MaxSameSource = 3
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Ranker{
		integrityChecker:     integrity.NewChecker(),
		credibility:          scoring.NewCredibilityScorer(reg),
		popularity:           scoring.NewPopularityScorer(scoring.WithClock(clock)),
		relevance:            scoring.NewRelevanceScorer(),
		integrityThreshold:   opts.IntegrityThreshold,
		credibilityThreshold: opts.CredibilityThreshold,
		maxSameSource:        opts.MaxSameSource,
	}
}

// Rank runs the full scoring pipeline: batch aggregates → per-article
// scores → final score under the preset → policy filter → ordering →
// diversity cap → Top-N with 1-based rank positions.
func (r *Ranker) Rank(articles []core.Article, preset string, limit int, keywords []string) []core.ScoredArticle {
	if len(articles) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = len(articles)
	}

	weights := PresetWeights(preset)
	logger.Info().Int("articles", len(articles)).Str("preset", preset).Msg("ranking started")

	scored := r.scoreAll(articles, keywords, weights)
	filtered := r.applyPolicy(scored)
	r.order(filtered, preset)
	diverse := r.ensureDiversity(filtered)

	if len(diverse) > limit {
		diverse = diverse[:limit]
	}
	for i := range diverse {
		diverse[i].RankPosition = i + 1
	}

	logger.Info().
		Int("input", len(articles)).
		Int("after_policy", len(filtered)).
		Int("result", len(diverse)).
		Msg("ranking complete")
	return diverse
}

// scoreAll computes batch aggregates once, then every per-axis score.
func (r *Ranker) scoreAll(articles []core.Article, keywords []string, weights Weights) []core.ScoredArticle {
	batch := scoring.NewBatch(articles)

	scored := make([]core.ScoredArticle, 0, len(articles))
	for i := range articles {
		a := articles[i]
		sa := core.ScoredArticle{Article: a}

		ir := r.integrityChecker.Assess(&a)
		sa.IntegrityScore = ir.Integrity
		sa.TitleBodyConsistency = ir.TitleBodyConsistency
		sa.ContaminationScore = ir.Contamination
		sa.SpamScore = ir.Spam
		sa.IntegrityFlags = ir.Flags

		cr := r.credibility.Score(&a, batch)
		sa.CredibilityScore = cr.Credibility
		sa.QualityScore = cr.Quality
		sa.EvidenceScore = cr.Evidence
		sa.SensationalismPenalty = cr.Sensationalism

		pr := r.popularity.Score(&a, batch)
		sa.PopularityScore = pr.Popularity
		sa.TrendingVelocity = pr.TrendingVelocity

		sa.RelevanceScore = r.relevance.Score(&a, keywords)

		sa.FinalScore = finalScore(&sa, weights)
		scored = append(scored, sa)
	}
	return scored
}

// finalScore is the weighted axis sum scaled to 0–100, one decimal.
func finalScore(a *core.ScoredArticle, w Weights) float64 {
	raw := a.PopularityScore*w.Popularity +
		a.RelevanceScore*w.Relevance +
		a.QualityScore*w.Quality +
		a.CredibilityScore*w.Credibility
	return math.Round(raw*1000) / 10
}

// applyPolicy drops low-integrity and spam articles and flags suspicious
// credibility without dropping.
func (r *Ranker) applyPolicy(scored []core.ScoredArticle) []core.ScoredArticle {
	var out []core.ScoredArticle
	for _, sa := range scored {
		if sa.IntegrityScore < r.integrityThreshold {
			logger.Debug().Str("title", sa.Title).Float64("integrity", sa.IntegrityScore).Msg("dropped by integrity policy")
			continue
		}
		if sa.SpamScore > 0.7 {
			logger.Debug().Str("title", sa.Title).Float64("spam", sa.SpamScore).Msg("dropped by spam policy")
			continue
		}
		if sa.CredibilityScore < r.credibilityThreshold {
			sa.PolicyFlags = append(sa.PolicyFlags, FlagSuspiciousCredibility)
		}
		out = append(out, sa)
	}
	return out
}

// order sorts in place. The latest preset orders strictly by publication
// time (articles without one sink to the bottom via the epoch fallback);
// every other preset orders by final score with publication time and id as
// tie-breakers.
func (r *Ranker) order(scored []core.ScoredArticle, preset string) {
	if preset == query.PresetLatest {
		sort.SliceStable(scored, func(i, j int) bool {
			return publishedOrEpoch(&scored[i]).After(publishedOrEpoch(&scored[j]))
		})
		return
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		pi, pj := publishedOrEpoch(&scored[i]), publishedOrEpoch(&scored[j])
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		return scored[i].ID < scored[j].ID
	})
}

func publishedOrEpoch(a *core.ScoredArticle) time.Time {
	if a.PublishedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return a.PublishedAt
}

// ensureDiversity walks the ordered list admitting at most maxSameSource
// articles per source id. When every article shares one source id (an
// aggregator batch), the source name becomes the key instead.
func (r *Ranker) ensureDiversity(scored []core.ScoredArticle) []core.ScoredArticle {
	if len(scored) == 0 {
		return scored
	}

	ids := make(map[string]bool)
	for i := range scored {
		ids[scored[i].SourceID] = true
	}
	useName := len(ids) == 1 && len(scored) > 1

	counts := make(map[string]int)
	var out []core.ScoredArticle
	for _, sa := range scored {
		key := sa.SourceID
		if useName {
			key = sa.SourceName
		}
		if counts[key] >= r.maxSameSource {
			continue
		}
		counts[key]++
		out = append(out, sa)
	}
	return out
}
