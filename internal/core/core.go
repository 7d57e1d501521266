// Package core defines the data model shared by every pipeline stage:
// raw records as they leave a connector, normalized articles, and the
// scored articles the ranker emits.
package core

import "time"

// Tier is the coarse credibility class assigned to a source in the manifest.
type Tier string

const (
	TierWhitelist Tier = "whitelist"
	Tier1         Tier = "tier1"
	Tier2         Tier = "tier2"
	Tier3         Tier = "tier3"
	TierBlacklist Tier = "blacklist"
)

// Weight returns the ranking weight associated with a tier.
// Unknown tiers fall back to 0.5.
func (t Tier) Weight() float64 {
	switch t {
	case TierWhitelist:
		return 1.00
	case Tier1:
		return 0.95
	case Tier2:
		return 0.80
	case Tier3:
		return 0.60
	case TierBlacklist:
		return 0.0
	default:
		return 0.5
	}
}

// Valid reports whether t is one of the five manifest tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierWhitelist, Tier1, Tier2, Tier3, TierBlacklist:
		return true
	}
	return false
}

// IngestKind identifies how a source is collected.
type IngestKind string

const (
	KindRSS      IngestKind = "rss"
	KindAPI      IngestKind = "api"
	KindWebCrawl IngestKind = "web_crawl"
)

// Categories is the closed category vocabulary. A normalized article's
// category, when present, is always one of these strings.
var Categories = []string{
	"politics", "economy", "society", "it", "science",
	"culture", "sports", "international", "entertainment",
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RawRecord is the output of a connector: one article as the provider
// returned it, before any normalization. Records are consumed by the
// normalizer and not retained.
type RawRecord struct {
	ID         string            `json:"id"`          // Stable content hash of source_id + url
	SourceID   string            `json:"source_id"`   // Registry id of the producing source
	SourceName string            `json:"source_name"` // Display name of the producing source
	RawData    map[string]string `json:"raw_data"`    // Opaque provider payload fields
	RawHTML    string            `json:"raw_html"`    // Raw HTML/text fragment from the provider
	Extracted  string            `json:"extracted"`   // Tag-stripped text, best effort
	URL        string            `json:"url"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Language   string            `json:"language"` // Two-letter hint, e.g. "ko"
	HTTPStatus int               `json:"http_status"`
	Elapsed    time.Duration     `json:"elapsed"` // Connector response latency
}

// Article is the canonical normalized form of a news story.
type Article struct {
	ID          string `json:"id"`            // Fresh unique identifier
	RawRecordID string `json:"raw_record_id"` // Identity of the originating RawRecord
	SourceID    string `json:"source_id"`
	SourceName  string `json:"source_name"`
	SourceTier  Tier   `json:"source_tier"`

	Title   string `json:"title"` // Plain text, tags stripped, entities decoded
	Body    string `json:"body"`  // Plain text
	Summary string `json:"summary,omitempty"`
	Author  string `json:"author,omitempty"`

	PublishedAt time.Time `json:"published_at"` // Always timezone-aware

	Language string   `json:"language"`
	Country  string   `json:"country"`
	Category string   `json:"category,omitempty"` // Empty or one of Categories
	Tags     []string `json:"tags,omitempty"`

	URL       string   `json:"url"`
	ImageURLs []string `json:"image_urls,omitempty"`

	// Engagement counts. Nil means the provider did not report the metric,
	// which is distinct from a reported zero.
	ViewCount    *int64 `json:"view_count,omitempty"`
	ShareCount   *int64 `json:"share_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
	LikeCount    *int64 `json:"like_count,omitempty"`

	CrawledAt    time.Time `json:"crawled_at"`
	NormalizedAt time.Time `json:"normalized_at"`

	ClusterID string `json:"cluster_id,omitempty"` // Set by the dedup engine for multi-member clusters
}

// Engagement reports whether a view, share or comment count was supplied by
// the provider. The like count is not considered.
func (a *Article) Engagement() bool {
	return a.ViewCount != nil || a.ShareCount != nil || a.CommentCount != nil
}

// ScoredArticle is an Article extended with every per-axis score the
// analysis stages produce plus the ranker's final verdict.
type ScoredArticle struct {
	Article

	// Content integrity
	IntegrityScore       float64  `json:"integrity_score"`
	TitleBodyConsistency float64  `json:"title_body_consistency"`
	ContaminationScore   float64  `json:"contamination_score"`
	SpamScore            float64  `json:"spam_score"`
	IntegrityFlags       []string `json:"integrity_flags,omitempty"`

	// Credibility & quality
	CredibilityScore      float64 `json:"credibility_score"`
	QualityScore          float64 `json:"quality_score"`
	EvidenceScore         float64 `json:"evidence_score"`
	SensationalismPenalty float64 `json:"sensationalism_penalty"`

	// Popularity
	PopularityScore  float64 `json:"popularity_score"`
	TrendingVelocity float64 `json:"trending_velocity"`

	// Relevance
	RelevanceScore float64 `json:"relevance_score"`

	// Final ranking
	FinalScore   float64  `json:"final_score"`   // 0–100, one decimal
	RankPosition int      `json:"rank_position"` // 1-based, set by the ranker
	PolicyFlags  []string `json:"policy_flags,omitempty"`
}
