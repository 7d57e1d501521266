// Package pipeline composes the full analysis flow: source selection,
// parallel ingestion, normalization, deduplication, scoring and ranking.
// One call, one ranked Top-N; nothing is persisted between calls.
package pipeline

import (
	"context"
	"time"

	"newscollector/internal/config"
	"newscollector/internal/core"
	"newscollector/internal/dedup"
	"newscollector/internal/ingest"
	"newscollector/internal/logger"
	"newscollector/internal/normalize"
	"newscollector/internal/query"
	"newscollector/internal/ranking"
	"newscollector/internal/registry"
	"newscollector/internal/scrape"
)

// Pipeline wires the analysis stages together.
type Pipeline struct {
	cfg          *config.Config
	registry     *registry.Registry
	orchestrator *ingest.Orchestrator
	normalizer   *normalize.Normalizer
	dedup        *dedup.Engine
	ranker       *ranking.Ranker
	scraper      *scrape.Scraper
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock injects the time source used by normalization and ranking, making runs
// reproducible in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithConnectorFactory replaces how connectors are built per source.
func WithConnectorFactory(factory ingest.ConnectorFactory) Option {
	return func(p *Pipeline) {
		p.orchestrator = ingest.NewOrchestrator(p.registry, factory, p.cfg.Ingest.MaxConcurrency)
	}
}

// WithScraper attaches the optional content scraper used to expand
// summary-only bodies before deduplication.
func WithScraper(s *scrape.Scraper) Option {
	return func(p *Pipeline) { p.scraper = s }
}

// New builds a Pipeline over the given configuration and registry.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) *Pipeline {
	timeout, err := time.ParseDuration(cfg.Ingest.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
	}

	p := &Pipeline{
		cfg:      cfg,
		registry: reg,
		now:      time.Now,
	}
	p.orchestrator = ingest.NewOrchestrator(reg, ingest.DefaultFactory(timeout, nil), cfg.Ingest.MaxConcurrency)

	for _, opt := range opts {
		opt(p)
	}

	loc, err := time.LoadLocation(cfg.Defaults.Timezone)
	if err != nil {
		loc = time.UTC
	}
	p.normalizer = normalize.New(normalize.WithLocation(loc), normalize.WithClock(p.now))
	p.dedup = dedup.New(cfg.Dedup.SimilarityThreshold)
	p.ranker = ranking.New(reg, ranking.Options{
		IntegrityThreshold:   cfg.Scoring.IntegrityThreshold,
		CredibilityThreshold: cfg.Scoring.CredibilityThreshold,
		MaxSameSource:        cfg.Scoring.SourceDiversity.MaxSameSourceInTopN,
		Clock:                p.now,
	})
	return p
}

// Collect runs the whole pipeline for one request. The only failure the
// caller can see is an invalid request; every operational error inside the
// pipeline degrades to fewer (possibly zero) results.
func (p *Pipeline) Collect(ctx context.Context, req query.Request) ([]core.ScoredArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sources := p.registry.Select(registry.SelectOptions{
		Categories:   req.Categories,
		Locale:       req.Locale,
		VerifiedOnly: req.VerifiedSourcesOnly,
	})
	logger.Info().Int("sources", len(sources)).Str("preset", req.Preset).Msg("pipeline run started")

	records := p.orchestrator.Collect(ctx, sources, ingest.FetchOptions{
		Keywords: req.Keywords,
		Limit:    req.Offset + req.Limit,
		From:     req.From,
		To:       req.To,
	})

	return p.Analyze(ctx, req, records, sources)
}

// Analyze runs the downstream stages over an already-gathered record
// batch. Stages are cheap and not individually cancellable; a stage simply
// does not start once the request deadline has passed.
func (p *Pipeline) Analyze(ctx context.Context, req query.Request, records []core.RawRecord, sources []registry.Source) ([]core.ScoredArticle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if deadlineExpired(ctx) {
		logger.Warn().Msg("deadline passed before normalization, returning empty batch")
		return nil, nil
	}

	sourceMap := make(map[string]*registry.Source, len(sources))
	for i := range sources {
		sourceMap[sources[i].ID] = &sources[i]
	}

	articles := p.normalizer.Batch(records, normalize.BatchOptions{
		Sources:         sourceMap,
		FilterVideo:     true,
		ExcludeKeywords: req.ExcludeKeywords,
	})
	articles = filterWindow(articles, req.From, req.To)

	if p.scraper != nil && p.cfg.Scrape.Enabled {
		articles = p.enrich(ctx, articles)
	}

	if deadlineExpired(ctx) {
		logger.Warn().Msg("deadline passed before deduplication, returning empty batch")
		return nil, nil
	}
	articles = p.dedup.Deduplicate(articles)

	if deadlineExpired(ctx) {
		logger.Warn().Msg("deadline passed before ranking, returning empty batch")
		return nil, nil
	}
	ranked := p.ranker.Rank(articles, req.Preset, req.Offset+req.Limit, req.Keywords)

	if req.Offset > 0 {
		if req.Offset >= len(ranked) {
			return nil, nil
		}
		ranked = ranked[req.Offset:]
		for i := range ranked {
			ranked[i].RankPosition = i + 1
		}
	}
	return ranked, nil
}

// enrich replaces summary-only bodies with the scraped full article where
// the scrape succeeds; failures keep the original body.
func (p *Pipeline) enrich(ctx context.Context, articles []core.Article) []core.Article {
	enriched := 0
	for i := range articles {
		if !p.scraper.ShouldScrape(articles[i].Body) {
			continue
		}
		result := p.scraper.Scrape(ctx, articles[i].URL)
		if !result.Success {
			continue
		}
		articles[i].Body = result.FullBody
		if len(result.Images) > 0 {
			articles[i].ImageURLs = result.Images
		}
		enriched++
	}
	if enriched > 0 {
		logger.Info().Int("count", enriched).Msg("articles enriched by scraper")
	}
	return articles
}

// filterWindow keeps articles published inside the inclusive window,
// comparing instants on the UTC line.
func filterWindow(articles []core.Article, from, to *time.Time) []core.Article {
	if from == nil && to == nil {
		return articles
	}
	var out []core.Article
	for _, a := range articles {
		t := a.PublishedAt.UTC()
		if from != nil && t.Before(from.UTC()) {
			continue
		}
		if to != nil && t.After(to.UTC()) {
			continue
		}
		out = append(out, a)
	}
	if dropped := len(articles) - len(out); dropped > 0 {
		logger.Info().Int("count", dropped).Msg("articles outside request window filtered")
	}
	return out
}

func deadlineExpired(ctx context.Context) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return ctx.Err() != nil
	}
	return ctx.Err() != nil || !time.Now().Before(deadline)
}
