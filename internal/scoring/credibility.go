package scoring

import (
	"math"
	"regexp"
	"strings"

	"newscollector/internal/core"
	"newscollector/internal/registry"
)

// evidencePatterns are the signals a substantiated article tends to carry:
// statistics, direct quotes, official statements, references and links.
var evidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+%`),
	regexp.MustCompile(`\d+억`),
	regexp.MustCompile(`\d+만`),
	regexp.MustCompile(`\d+조`),
	regexp.MustCompile(`"[^"]{5,}"`),
	regexp.MustCompile(`'[^']{5,}'`),
	regexp.MustCompile(`관계자는?\s`),
	regexp.MustCompile(`대변인`),
	regexp.MustCompile(`보고서`),
	regexp.MustCompile(`연구\s결과`),
	regexp.MustCompile(`발표\s자료`),
	regexp.MustCompile(`https?://\S+`),
}

// sensationalWords are clickbait markers counted against the title.
var sensationalWords = []string{
	"충격", "경악", "발칵", "폭탄", "대박", "역대급", "초대형",
	"긴급", "속보", "단독", "breaking", "shock",
}

var runOnPunctuationRe = regexp.MustCompile(`[!?]{2,}|[ㅋㅎ]{2,}`)

// tierTrust maps a tier to its base trust when the registry has no
// fine-grained score for the source.
var tierTrust = map[core.Tier]float64{
	core.TierWhitelist: 0.95,
	core.Tier1:         0.85,
	core.Tier2:         0.65,
	core.Tier3:         0.40,
	core.TierBlacklist: 0.0,
}

// CredibilityResult carries the credibility and quality axes plus their
// observable components.
type CredibilityResult struct {
	Credibility    float64
	Quality        float64
	Evidence       float64
	Sensationalism float64
}

// CredibilityScorer rates source trust, cross-source corroboration,
// evidence signals and sensationalism.
type CredibilityScorer struct {
	registry *registry.Registry
}

// NewCredibilityScorer builds a scorer. The registry may be nil, in which
// case trust falls back to the tier mapping alone.
func NewCredibilityScorer(reg *registry.Registry) *CredibilityScorer {
	return &CredibilityScorer{registry: reg}
}

// Score rates one article against the batch snapshot.
func (s *CredibilityScorer) Score(a *core.Article, batch *Batch) CredibilityResult {
	trust := s.sourceTrust(a)
	bonus := crossSourceBonus(a, batch)
	evidence := evidenceScore(a.Body)
	sensationalism := sensationalismPenalty(a.Title)

	return CredibilityResult{
		Credibility:    math.Min(1, trust+bonus),
		Quality:        math.Max(0, math.Min(1, evidence-sensationalism)),
		Evidence:       evidence,
		Sensationalism: sensationalism,
	}
}

// sourceTrust prefers the registry's fine-grained base credibility (0–100)
// over the coarse tier mapping. Unknown tiers score 0.5.
func (s *CredibilityScorer) sourceTrust(a *core.Article) float64 {
	if s.registry != nil {
		if src := s.registry.Get(a.SourceID); src != nil {
			return src.BaseCredibility / 100.0
		}
	}
	if trust, ok := tierTrust[a.SourceTier]; ok {
		return trust
	}
	return 0.5
}

// crossSourceBonus rewards stories other sources also ran: +0.15 for three
// or more corroborators, +0.05 for at least one.
func crossSourceBonus(a *core.Article, batch *Batch) float64 {
	if batch == nil {
		return 0
	}
	switch count := batch.Corroborators(a.ID); {
	case count >= 3:
		return 0.15
	case count >= 1:
		return 0.05
	default:
		return 0
	}
}

// evidenceScore is the fraction of evidence patterns found in the body
// plus a length bonus of up to 0.2. An empty body scores 0.3.
func evidenceScore(body string) float64 {
	if body == "" {
		return 0.3
	}

	matches := 0
	for _, p := range evidencePatterns {
		if p.MatchString(body) {
			matches++
		}
	}

	lengthBonus := math.Min(0.2, float64(len(body))/5000)
	return math.Min(1, float64(matches)/float64(len(evidencePatterns))+lengthBonus)
}

// sensationalismPenalty sums clickbait-word hits (0.15 each, capped 0.5)
// and run-on punctuation (0.1 each, capped 0.2), capped at 1 overall.
func sensationalismPenalty(title string) float64 {
	lower := strings.ToLower(title)

	wordCount := 0
	for _, w := range sensationalWords {
		if strings.Contains(lower, w) {
			wordCount++
		}
	}
	penalty := math.Min(0.5, float64(wordCount)*0.15)

	punct := len(runOnPunctuationRe.FindAllString(title, -1))
	penalty += math.Min(0.2, float64(punct)*0.1)

	return math.Min(1, penalty)
}
