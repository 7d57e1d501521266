// Package registry manages the declarative source manifest and the runtime
// health state of every source. It is the only mutable shared state in the
// pipeline: reads are concurrent, mutations are serialised.
package registry

import (
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"newscollector/internal/core"
	"newscollector/internal/logger"
)

// manifest mirrors the sources_registry.yaml document. Unknown fields are
// ignored by the decoder.
type manifest struct {
	TierDefinitions map[string]TierDefinition `yaml:"tier_definitions"`
	Sources         map[string]manifestSource `yaml:"sources"`
}

type manifestSource struct {
	Source   `yaml:",inline"`
	IsActive *bool `yaml:"is_active"`
}

// Registry holds every declared source and its tier definitions.
type Registry struct {
	mu          sync.RWMutex
	sources     map[string]*Source
	order       []string // stable id order
	tiers       map[string]TierDefinition
	maxFailures int
	now         func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxFailures sets how many consecutive failures deactivate a source.
func WithMaxFailures(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxFailures = n
		}
	}
}

// WithClock injects the time source used for health timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Load reads the manifest at path. A missing or unreadable manifest yields
// an empty registry whose queries all return empty results; it is never an
// error at query time.
func Load(path string, opts ...Option) *Registry {
	r := newRegistry(opts...)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("source manifest not readable, registry is empty")
		return r
	}
	if err := r.loadManifest(data); err != nil {
		logger.Error().Str("path", path).Err(err).Msg("source manifest failed to parse, registry is empty")
		return r
	}

	logger.Info().
		Int("sources", len(r.sources)).
		Int("tiers", len(r.tiers)).
		Msg("source registry loaded")
	return r
}

// LoadBytes builds a registry from an in-memory manifest document.
func LoadBytes(data []byte, opts ...Option) (*Registry, error) {
	r := newRegistry(opts...)
	if err := r.loadManifest(data); err != nil {
		return nil, err
	}
	return r, nil
}

func newRegistry(opts ...Option) *Registry {
	r := &Registry{
		sources:     make(map[string]*Source),
		tiers:       make(map[string]TierDefinition),
		maxFailures: 5,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) loadManifest(data []byte) error {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}

	for name, def := range m.TierDefinitions {
		def.Name = name
		r.tiers[name] = def
	}

	ids := make([]string, 0, len(m.Sources))
	for id := range m.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ms := m.Sources[id]
		src := ms.Source
		applyDefaults(id, &src)
		src.Active = ms.IsActive == nil || *ms.IsActive
		r.sources[src.ID] = &src
		r.order = append(r.order, src.ID)
	}
	return nil
}

// Get returns the source with the given id, or nil.
func (r *Registry) Get(id string) *Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sources[id]; ok {
		copied := *s
		return &copied
	}
	return nil
}

// TierDefinition returns the manifest definition for a tier name.
func (r *Registry) TierDefinition(name string) (TierDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tiers[name]
	return def, ok
}

// All returns every declared source, ordered by source id.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*Source) bool { return true })
}

// Active returns sources that are active and not blacklisted.
func (r *Registry) Active() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.Tier != core.TierBlacklist
	})
}

// ByTier returns active sources with the given tier.
func (r *Registry) ByTier(tier core.Tier) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.Tier == tier
	})
}

// ByKind returns active sources collected via the given ingestion kind.
func (r *Registry) ByKind(kind core.IngestKind) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.IngestionKind == kind
	})
}

// ByCategory returns active, non-blacklisted sources that declare the category.
func (r *Registry) ByCategory(category string) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.Tier != core.TierBlacklist && s.SupportsCategory(category)
	})
}

// ByLocale returns active, non-blacklisted sources that support the locale.
func (r *Registry) ByLocale(locale string) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.Tier != core.TierBlacklist && s.SupportsLocale(locale)
	})
}

// Verified returns active whitelist and tier1 sources.
func (r *Registry) Verified() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(s *Source) bool {
		return s.Active && s.Verified()
	})
}

func (r *Registry) collect(keep func(*Source) bool) []Source {
	var out []Source
	for _, id := range r.order {
		s := r.sources[id]
		if keep(s) {
			out = append(out, *s)
		}
	}
	return out
}

// SelectOptions narrows source selection for one request.
type SelectOptions struct {
	Categories   []string
	Locale       string
	VerifiedOnly bool
	Kind         core.IngestKind
}

// Select returns the active, non-blacklisted sources matching the options,
// sorted by descending base credibility with ties broken by id.
func (r *Registry) Select(opts SelectOptions) []Source {
	r.mu.RLock()
	candidates := r.collect(func(s *Source) bool {
		return s.Active && s.Tier != core.TierBlacklist
	})
	r.mu.RUnlock()

	var out []Source
	for _, s := range candidates {
		if opts.VerifiedOnly && !s.Verified() {
			continue
		}
		if len(opts.Categories) > 0 && !supportsAny(&s, opts.Categories) {
			continue
		}
		if opts.Locale != "" && !s.SupportsLocale(opts.Locale) {
			continue
		}
		if opts.Kind != "" && s.IngestionKind != opts.Kind {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BaseCredibility != out[j].BaseCredibility {
			return out[i].BaseCredibility > out[j].BaseCredibility
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func supportsAny(s *Source, categories []string) bool {
	if len(s.SupportedCategories) == 0 {
		return true
	}
	for _, c := range categories {
		if s.SupportsCategory(c) {
			return true
		}
	}
	return false
}

// RecordSuccess zeroes the failure counter and stamps both crawl timestamps.
// Unknown ids are a no-op.
func (r *Registry) RecordSuccess(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return
	}
	now := r.now()
	s.LastCrawled = now
	s.LastSuccess = now
	s.FailureCount = 0
}

// RecordFailure increments the failure counter, deactivating the source
// once it reaches the configured threshold. Unknown ids are a no-op.
func (r *Registry) RecordFailure(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return
	}
	s.LastCrawled = r.now()
	s.FailureCount++
	logger.Warn().Str("source", id).Int("consecutive_failures", s.FailureCount).Msg("source fetch failed")

	if s.FailureCount >= r.maxFailures && s.Active {
		s.Active = false
		logger.Error().Str("source", id).Int("failures", s.FailureCount).Msg("source auto-deactivated")
	}
}

// Reactivate restores a deactivated source and zeroes its failure counter.
// It reports false for unknown or blacklisted sources.
func (r *Registry) Reactivate(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok || s.Tier == core.TierBlacklist {
		return false
	}
	s.Active = true
	s.FailureCount = 0
	logger.Info().Str("source", id).Msg("source reactivated")
	return true
}

// Stats summarises the registry by tier and ingestion kind.
type Stats struct {
	Total  int
	Active int
	ByTier map[core.Tier]int
	ByKind map[core.IngestKind]int
}

// Stats returns per-tier and per-kind counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Stats{
		Total:  len(r.sources),
		ByTier: make(map[core.Tier]int),
		ByKind: make(map[core.IngestKind]int),
	}
	for _, s := range r.sources {
		st.ByTier[s.Tier]++
		st.ByKind[s.IngestionKind]++
		if s.Active && s.Tier != core.TierBlacklist {
			st.Active++
		}
	}
	return st
}
