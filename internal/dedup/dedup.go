// Package dedup removes duplicate articles and clusters near-duplicates,
// keeping one representative per story.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"newscollector/internal/core"
	"newscollector/internal/logger"
)

// DefaultSimilarityThreshold is the Jaccard cutoff at or above which two titles
// are treated as the same story. It is owned by this package and configured
// independently of any scoring threshold.
const DefaultSimilarityThreshold = 0.6

// Engine runs the three-pass dedup cascade: canonical URL, title hash,
// title-similarity clustering.
type Engine struct {
	threshold float64
}

// New builds an Engine with the given similarity threshold; values outside
// (0, 1] fall back to the default.
func New(threshold float64) *Engine {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Engine{threshold: threshold}
}

// Deduplicate collapses exact URL and title duplicates, then clusters the
// remainder by title similarity and keeps each cluster's representative.
// Input order decides which duplicate survives: the first one wins.
func (e *Engine) Deduplicate(articles []core.Article) []core.Article {
	if len(articles) == 0 {
		return nil
	}

	byURL := dedupByURL(articles)
	byTitle := dedupByTitleHash(byURL)
	clustered := e.clusterSimilar(byTitle)

	logger.Info().
		Int("input", len(articles)).
		Int("after_url", len(byURL)).
		Int("after_title", len(byTitle)).
		Int("after_cluster", len(clustered)).
		Msg("deduplication complete")
	return clustered
}

func dedupByURL(articles []core.Article) []core.Article {
	seen := make(map[string]bool, len(articles))
	var out []core.Article
	for _, a := range articles {
		key := CanonicalURL(a.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func dedupByTitleHash(articles []core.Article) []core.Article {
	seen := make(map[string]bool, len(articles))
	var out []core.Article
	for _, a := range articles {
		sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(a.Title))))
		key := hex.EncodeToString(sum[:])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// clusterSimilar greedily seeds a cluster with each unassigned article in
// input order and attaches later unassigned articles whose title similarity
// meets the threshold. The representative is the member with the longest
// body; clusters with more than one member get a fresh cluster id.
func (e *Engine) clusterSimilar(articles []core.Article) []core.Article {
	if len(articles) < 2 {
		return articles
	}

	assigned := make([]bool, len(articles))
	var out []core.Article

	for i := range articles {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []int{i}

		for j := i + 1; j < len(articles); j++ {
			if assigned[j] {
				continue
			}
			if Jaccard(articles[i].Title, articles[j].Title) >= e.threshold {
				assigned[j] = true
				members = append(members, j)
			}
		}

		best := members[0]
		for _, m := range members[1:] {
			if len(articles[m].Body) > len(articles[best].Body) {
				best = m
			}
		}

		rep := articles[best]
		if len(members) > 1 {
			rep.ClusterID = uuid.NewString()
			logger.Debug().Int("members", len(members)).Str("title", rep.Title).Msg("cluster formed")
		}
		out = append(out, rep)
	}
	return out
}

// CanonicalURL lowercases the URL, drops its query string and fragment,
// and strips the trailing slash. The operation is idempotent.
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		// Not an absolute URL; strip query and fragment textually.
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = strings.TrimSpace(trimmed[:i])
		}
		return strings.TrimRight(strings.ToLower(trimmed), "/")
	}
	canon := parsed.Scheme + "://" + parsed.Host + parsed.Path
	return strings.TrimRight(strings.ToLower(canon), "/")
}

// Jaccard computes word-level Jaccard similarity of two titles over
// lowercase whitespace tokens. Either side being empty yields 0.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}
