package registry

import (
	"time"

	"newscollector/internal/core"
)

// RateLimit describes a source's request budget.
type RateLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerHour   int `yaml:"requests_per_hour"`
	DailyQuota        int `yaml:"daily_quota"`
}

// ProvidesMetadata records which optional fields a source's payloads carry.
type ProvidesMetadata struct {
	Author      bool `yaml:"author"`
	Views       bool `yaml:"views"`
	Shares      bool `yaml:"shares"`
	Comments    bool `yaml:"comments"`
	PublishDate bool `yaml:"publish_date"`
}

// Source is the full descriptor of one news source as declared in the
// manifest plus its runtime health state.
type Source struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	IngestionKind core.IngestKind `yaml:"ingestion_type"`
	BaseURL       string          `yaml:"base_url"`

	DefaultLocale       string   `yaml:"default_locale"`
	DefaultTimezone     string   `yaml:"default_timezone"`
	SupportedLocales    []string `yaml:"supported_locales"`
	SupportedCategories []string `yaml:"supported_categories"`

	Tier            core.Tier `yaml:"tier"`
	BaseCredibility float64   `yaml:"credibility_base_score"` // 0–100

	RateLimit         RateLimit `yaml:"rate_limit"`
	CrawlDelaySeconds int       `yaml:"crawl_delay_seconds"`
	UserAgent         string    `yaml:"user_agent"`

	Provides ProvidesMetadata `yaml:"provides_metadata"`

	// Runtime state, mutated only through the registry.
	Active       bool      `yaml:"-"`
	LastCrawled  time.Time `yaml:"-"`
	LastSuccess  time.Time `yaml:"-"`
	FailureCount int       `yaml:"-"`
}

// Verified reports whether the source is whitelist or tier1.
func (s *Source) Verified() bool {
	return s.Tier == core.TierWhitelist || s.Tier == core.Tier1
}

// SupportsCategory reports whether the source can serve the category.
// A source with no declared categories is category-agnostic.
func (s *Source) SupportsCategory(category string) bool {
	if len(s.SupportedCategories) == 0 {
		return true
	}
	for _, c := range s.SupportedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// SupportsLocale reports whether the source declares the locale.
func (s *Source) SupportsLocale(locale string) bool {
	for _, l := range s.SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// TierDefinition is the manifest's description of one credibility tier.
type TierDefinition struct {
	Name            string  `yaml:"-"`
	Description     string  `yaml:"description"`
	BaseCredibility float64 `yaml:"base_credibility"`
	Weight          float64 `yaml:"weight"`
}

func applyDefaults(id string, s *Source) {
	if s.ID == "" {
		s.ID = id
	}
	if s.IngestionKind == "" {
		s.IngestionKind = core.KindRSS
	}
	if s.DefaultLocale == "" {
		s.DefaultLocale = "ko_KR"
	}
	if s.DefaultTimezone == "" {
		s.DefaultTimezone = "Asia/Seoul"
	}
	if len(s.SupportedLocales) == 0 {
		s.SupportedLocales = []string{s.DefaultLocale}
	}
	if s.Tier == "" {
		s.Tier = core.Tier2
	}
	if s.BaseCredibility == 0 {
		s.BaseCredibility = 70
	}
	if s.RateLimit.RequestsPerMinute == 0 {
		s.RateLimit.RequestsPerMinute = 60
	}
	if s.RateLimit.RequestsPerHour == 0 {
		s.RateLimit.RequestsPerHour = 1000
	}
	if s.RateLimit.DailyQuota == 0 {
		s.RateLimit.DailyQuota = 10000
	}
	if s.CrawlDelaySeconds == 0 {
		s.CrawlDelaySeconds = 1
	}
	if s.UserAgent == "" {
		s.UserAgent = "NewsCollector/1.0"
	}
}
