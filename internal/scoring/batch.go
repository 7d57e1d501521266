// Package scoring holds the per-axis scorers: credibility/quality,
// popularity and relevance. Each scorer is pure; anything that depends on
// the whole batch is computed once into a Batch snapshot before the
// per-article passes run, so scoring can be fanned out safely.
package scoring

import (
	"strings"

	"newscollector/internal/core"
)

// corroborationThreshold is the title-similarity cutoff for counting
// another source's article as corroborating this one. It is a scoring
// constant, independent of the dedup clustering threshold.
const corroborationThreshold = 0.5

// Batch is the read-only aggregate snapshot of one article batch:
// engagement maxima for normalisation and per-article cross-source
// corroborator counts.
type Batch struct {
	MaxViews    float64
	MaxShares   float64
	MaxComments float64

	corroborators map[string]int // article id → distinct-source similar titles
}

// NewBatch computes the aggregates for the given articles.
func NewBatch(articles []core.Article) *Batch {
	b := &Batch{
		MaxViews:      1,
		MaxShares:     1,
		MaxComments:   1,
		corroborators: make(map[string]int, len(articles)),
	}

	for i := range articles {
		a := &articles[i]
		if a.ViewCount != nil && float64(*a.ViewCount) > b.MaxViews {
			b.MaxViews = float64(*a.ViewCount)
		}
		if a.ShareCount != nil && float64(*a.ShareCount) > b.MaxShares {
			b.MaxShares = float64(*a.ShareCount)
		}
		if a.CommentCount != nil && float64(*a.CommentCount) > b.MaxComments {
			b.MaxComments = float64(*a.CommentCount)
		}
	}

	words := make([]map[string]bool, len(articles))
	for i := range articles {
		words[i] = titleWords(articles[i].Title)
	}

	for i := range articles {
		if len(words[i]) < 3 {
			continue
		}
		count := 0
		for j := range articles {
			if i == j || articles[i].SourceID == articles[j].SourceID || articles[i].ID == articles[j].ID {
				continue
			}
			if len(words[j]) == 0 {
				continue
			}
			if jaccard(words[i], words[j]) >= corroborationThreshold {
				count++
			}
		}
		b.corroborators[articles[i].ID] = count
	}
	return b
}

// Corroborators returns how many articles from other sources share this
// article's story, per the precomputed title-similarity pass.
func (b *Batch) Corroborators(articleID string) int {
	return b.corroborators[articleID]
}

func titleWords(title string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
