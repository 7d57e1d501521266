// Package config loads pipeline configuration from YAML files and the
// environment. Every dot-addressed key can be overridden by an environment
// variable named NEWS_COLLECTOR_ followed by the uppercased, underscore-joined
// key path (e.g. scoring.integrity_threshold →
// NEWS_COLLECTOR_SCORING_INTEGRITY_THRESHOLD).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all pipeline configuration.
type Config struct {
	Defaults         Defaults         `mapstructure:"defaults"`
	Scoring          Scoring          `mapstructure:"scoring"`
	SourceManagement SourceManagement `mapstructure:"source_management"`
	Dedup            Dedup            `mapstructure:"dedup"`
	Ingest           Ingest           `mapstructure:"ingest"`
	Scrape           Scrape           `mapstructure:"scrape"`
	Logging          Logging          `mapstructure:"logging"`
}

// Defaults holds request defaults applied when the caller leaves a field unset.
type Defaults struct {
	Locale              string `mapstructure:"locale"`
	Timezone            string `mapstructure:"timezone"`
	Country             string `mapstructure:"country"`
	Language            string `mapstructure:"language"`
	Limit               int    `mapstructure:"limit"`
	Offset              int    `mapstructure:"offset"`
	PopularityType      string `mapstructure:"popularity_type"`
	GroupBy             string `mapstructure:"group_by"`
	Diversity           bool   `mapstructure:"diversity"`
	VerifiedSourcesOnly bool   `mapstructure:"verified_sources_only"`
}

// Scoring holds ranking thresholds.
type Scoring struct {
	IntegrityThreshold   float64         `mapstructure:"integrity_threshold"`
	CredibilityThreshold float64         `mapstructure:"credibility_threshold"`
	SourceDiversity      SourceDiversity `mapstructure:"source_diversity"`
}

// SourceDiversity caps how many articles one source may place in the Top-N.
type SourceDiversity struct {
	MaxSameSourceInTopN int `mapstructure:"max_same_source_in_top_n"`
}

// SourceManagement holds registry health-tracking knobs.
type SourceManagement struct {
	MaxConsecutiveFailures int    `mapstructure:"max_consecutive_failures"`
	ManifestPath           string `mapstructure:"manifest_path"`
}

// Dedup holds the clustering threshold, owned by the dedup engine and
// independent of the credibility cross-source threshold.
type Dedup struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// Ingest holds connector-level settings.
type Ingest struct {
	Timeout        string `mapstructure:"timeout"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// Scrape holds content-scraper settings.
type Scrape struct {
	Enabled        bool    `mapstructure:"enabled"`
	MinBodyLength  int     `mapstructure:"min_body_length"`
	Timeout        string  `mapstructure:"timeout"`
	CacheTTL       string  `mapstructure:"cache_ttl"`
	MaxRetries     int     `mapstructure:"max_retries"`
	PerHostPerSec  float64 `mapstructure:"per_host_per_sec"`
	MinImageWidth  int     `mapstructure:"min_image_width"`
	MinImageHeight int     `mapstructure:"min_image_height"`
}

// Logging holds logger settings.
type Logging struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from the given file (or the default search path
// when empty), applies defaults, and lets NEWS_COLLECTOR_* environment
// variables override any key. Finding no config file on the default search
// path is not an error; an explicitly named file that cannot be read is.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName("newscollector")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("NEWS_COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment. Used by tests.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// Defaults are static and always unmarshal.
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.locale", "ko_KR")
	v.SetDefault("defaults.timezone", "Asia/Seoul")
	v.SetDefault("defaults.country", "KR")
	v.SetDefault("defaults.language", "ko")
	v.SetDefault("defaults.limit", 20)
	v.SetDefault("defaults.offset", 0)
	v.SetDefault("defaults.popularity_type", "latest")
	v.SetDefault("defaults.group_by", "none")
	v.SetDefault("defaults.diversity", true)
	v.SetDefault("defaults.verified_sources_only", false)

	v.SetDefault("scoring.integrity_threshold", 0.5)
	v.SetDefault("scoring.credibility_threshold", 0.6)
	v.SetDefault("scoring.source_diversity.max_same_source_in_top_n", 3)

	v.SetDefault("source_management.max_consecutive_failures", 5)
	v.SetDefault("source_management.manifest_path", "sources_registry.yaml")

	v.SetDefault("dedup.similarity_threshold", 0.6)

	v.SetDefault("ingest.timeout", "15s")
	v.SetDefault("ingest.max_concurrency", 8)

	v.SetDefault("scrape.enabled", false)
	v.SetDefault("scrape.min_body_length", 150)
	v.SetDefault("scrape.timeout", "10s")
	v.SetDefault("scrape.cache_ttl", "1h")
	v.SetDefault("scrape.max_retries", 2)
	v.SetDefault("scrape.per_host_per_sec", 2)
	v.SetDefault("scrape.min_image_width", 100)
	v.SetDefault("scrape.min_image_height", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}
