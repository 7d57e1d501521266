package scoring

import (
	"math"
	"strings"

	"newscollector/internal/core"
)

// RelevanceScorer rates how well an article matches the request keywords,
// with bilingual synonym expansion.
type RelevanceScorer struct{}

// NewRelevanceScorer returns a relevance scorer.
func NewRelevanceScorer() *RelevanceScorer { return &RelevanceScorer{} }

// Score rates one article. With no keywords it falls back to a content
// heuristic: base 0.5, +0.2 for a category, +0.1 for tags, +0.1 for a body
// over 100 characters.
func (s *RelevanceScorer) Score(a *core.Article, keywords []string) float64 {
	if len(keywords) == 0 {
		base := 0.5
		if a.Category != "" {
			base += 0.2
		}
		if len(a.Tags) > 0 {
			base += 0.1
		}
		if len(a.Body) > 100 {
			base += 0.1
		}
		return math.Min(1, base)
	}

	title := strings.ToLower(a.Title)
	body := strings.ToLower(a.Body)
	if strings.TrimSpace(title+body) == "" {
		return 0
	}

	total := 0.0
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		terms := append([]string{kwLower}, Synonyms(kwLower)...)

		best := 0.0
		for _, term := range terms {
			term = strings.ToLower(term)
			score := 0.0
			if strings.Contains(title, term) {
				score += 0.6
			}
			if strings.Contains(body, term) {
				score += 0.3
			}
			score += math.Min(0.3, float64(strings.Count(body, term))*0.05)
			if score > best {
				best = score
			}
		}
		total += best
	}

	relevance := total / float64(len(keywords))

	// One-time bonus when the category overlaps any keyword.
	if a.Category != "" {
		cat := strings.ToLower(a.Category)
		for _, kw := range keywords {
			kwLower := strings.ToLower(kw)
			if strings.Contains(cat, kwLower) || strings.Contains(kwLower, cat) {
				relevance = math.Min(1, relevance+0.1)
				break
			}
		}
	}

	return math.Min(1, relevance)
}
