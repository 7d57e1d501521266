// Package integrity evaluates content integrity: does the body deliver
// what the title promises, does the article stay on one topic, and is it
// spam or advertising dressed up as news.
package integrity

import (
	"crypto/sha256"
	"math"
	"regexp"
	"strings"

	"newscollector/internal/core"
)

// Flags reported alongside the scores.
const (
	FlagRepetitiveContent  = "repetitive_content"
	FlagAdContent          = "ad_content"
	FlagIllegalContent     = "illegal_content"
	FlagLowContentQuality  = "low_content_quality"
	FlagSensationalTitle   = "sensational_title"
	FlagUnrelatedTopics    = "unrelated_topics"
	FlagInconsistentTopics = "inconsistent_topics"
)

// Word lists and patterns are data: extending them must not require
// touching the scoring rules.
var (
	adKeywords = []string{
		"클릭", "지금구매", "할인", "특가", "무료배송", "광고", "sponsored",
		"click here", "buy now", "limited offer", "free shipping", "promoted",
	}

	illegalKeywords = []string{
		"도박", "카지노", "성인", "음란", "gambling", "casino",
	}

	sensationalTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\[충격\]`),
		regexp.MustCompile(`\[경악\]`),
		regexp.MustCompile(`놀라운\s(발표|비밀|진실)`),
		regexp.MustCompile(`\d+번\s(이것|저것)`),
		regexp.MustCompile(`이\s사실일\s리\s없다`),
	}

	functionWords = map[string]bool{
		"의": true, "이": true, "가": true, "을": true, "를": true, "에": true,
		"에서": true, "로": true, "과": true, "그리고": true, "또는": true,
		"있다": true, "하다": true, "되다": true,
	}

	contaminationStopwords = map[string]bool{
		"의": true, "이": true, "그": true, "저": true, "것": true, "수": true,
		"등": true, "같은": true, "있다": true, "하다": true,
		"and": true, "the": true, "is": true,
	}

	hangulEntityRe = regexp.MustCompile(`[가-힣]{2,}`)
	asciiEntityRe  = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\b`)
)

// Result carries the composite integrity score, its sub-scores, and the
// qualitative flags the rules raised.
type Result struct {
	Integrity            float64
	TitleBodyConsistency float64
	Contamination        float64
	Spam                 float64
	Flags                []string
}

// Checker is a pure, stateless integrity evaluator.
type Checker struct{}

// NewChecker returns an integrity checker.
func NewChecker() *Checker { return &Checker{} }

// Assess scores one article. The composite weighs consistency 0.4 and the
// inverted contamination and spam scores 0.3 each, clamped to [0, 1].
func (c *Checker) Assess(a *core.Article) Result {
	consistency := c.titleBodyConsistency(a)
	contamination, contFlags := c.contamination(a)
	spam, spamFlags := c.spam(a)

	integrity := consistency*0.4 + (1-contamination)*0.3 + (1-spam)*0.3
	integrity = math.Max(0, math.Min(1, integrity))

	flags := append(contFlags, spamFlags...)
	return Result{
		Integrity:            integrity,
		TitleBodyConsistency: consistency,
		Contamination:        contamination,
		Spam:                 spam,
		Flags:                flags,
	}
}

// titleBodyConsistency measures how much of the title's entities the body
// covers, discounted when the title words all bunch into one paragraph.
func (c *Checker) titleBodyConsistency(a *core.Article) float64 {
	if a.Body == "" || a.Title == "" {
		return 0.5
	}

	entities := extractEntities(a.Title)
	if len(entities) == 0 {
		return 1.0
	}

	bodyLower := strings.ToLower(a.Body)
	covered := 0
	for _, e := range entities {
		if strings.Contains(bodyLower, strings.ToLower(e)) {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(entities))

	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a.Title)) {
		if len([]rune(w)) > 2 {
			titleWords[w] = true
		}
	}

	paragraphs := splitParagraphs(a.Body, 5)
	if len(paragraphs) == 0 || len(titleWords) == 0 {
		return coverage
	}

	var counts []int
	total := 0
	for _, para := range paragraphs {
		paraLower := strings.ToLower(para)
		count := 0
		for w := range titleWords {
			if strings.Contains(paraLower, w) {
				count++
			}
		}
		counts = append(counts, count)
		total += count
	}

	if total == 0 {
		return coverage * 0.5
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	maxConc := float64(maxCount) / float64(total)
	return math.Min(1, coverage*(1-maxConc*0.2))
}

// contamination detects multi-topic bodies through the Jaccard similarity
// of adjacent paragraphs' content words.
func (c *Checker) contamination(a *core.Article) (float64, []string) {
	if a.Body == "" {
		return 0, nil
	}

	paragraphs := splitParagraphs(a.Body, 10)
	if len(paragraphs) < 2 {
		return 0, nil
	}

	keywordSets := make([]map[string]bool, len(paragraphs))
	for i, para := range paragraphs {
		keywordSets[i] = contentWords(para)
	}

	var similarities []float64
	for i := 0; i < len(keywordSets)-1; i++ {
		union := len(keywordSets[i]) + len(keywordSets[i+1])
		intersection := 0
		for w := range keywordSets[i] {
			if keywordSets[i+1][w] {
				intersection++
			}
		}
		union -= intersection
		if union == 0 {
			continue
		}
		similarities = append(similarities, float64(intersection)/float64(union))
	}

	if len(similarities) == 0 {
		return 0, nil
	}

	sum := 0.0
	lowCount := 0
	for _, s := range similarities {
		sum += s
		if s < 0.2 {
			lowCount++
		}
	}
	avg := sum / float64(len(similarities))

	switch {
	case avg < 0.3:
		return 0.7, []string{FlagUnrelatedTopics}
	case float64(lowCount) > float64(len(similarities))*0.5:
		return 0.5, []string{FlagInconsistentTopics}
	default:
		return 0, nil
	}
}

// spam accumulates penalties for repetitive sentences, ad and illegal
// keywords, low lexical density and sensational titles, capped at 1.
func (c *Checker) spam(a *core.Article) (float64, []string) {
	var flags []string
	score := 0.0
	text := strings.ToLower(a.Body + " " + a.Title)

	if hasRepetitiveSentences(a.Body) {
		score += 0.3
		flags = append(flags, FlagRepetitiveContent)
	}

	if containsAny(text, adKeywords) {
		score += 0.3
		flags = append(flags, FlagAdContent)
	}

	if containsAny(text, illegalKeywords) {
		score += 0.5
		flags = append(flags, FlagIllegalContent)
	}

	if words := strings.Fields(text); len(words) > 0 {
		meaningful := 0
		for _, w := range words {
			if !functionWords[w] && len([]rune(w)) > 1 {
				meaningful++
			}
		}
		if float64(meaningful)/float64(len(words)) < 0.4 {
			score += 0.2
			flags = append(flags, FlagLowContentQuality)
		}
	}

	for _, pattern := range sensationalTitlePatterns {
		if pattern.MatchString(a.Title) {
			score += 0.1
			flags = append(flags, FlagSensationalTitle)
			break
		}
	}

	return math.Min(1, score), flags
}

// extractEntities pulls multi-character tokens out of a title: runs of two
// or more Hangul syllables and capitalised ASCII words.
func extractEntities(title string) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, match := range hangulEntityRe.FindAllString(title, -1) {
		if !seen[match] {
			seen[match] = true
			entities = append(entities, match)
		}
	}
	for _, match := range asciiEntityRe.FindAllString(title, -1) {
		if !seen[match] {
			seen[match] = true
			entities = append(entities, match)
		}
	}
	return entities
}

func splitParagraphs(body string, max int) []string {
	var paragraphs []string
	for _, p := range strings.Split(body, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
			if len(paragraphs) == max {
				break
			}
		}
	}
	return paragraphs
}

func contentWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(w)) > 2 && !contaminationStopwords[w] {
			words[w] = true
		}
	}
	return words
}

// hasRepetitiveSentences reports whether the body repeats itself: among
// period-split sentences, a unique-hash ratio below 0.7 with at least
// three sentences.
func hasRepetitiveSentences(body string) bool {
	var sentences []string
	for _, s := range strings.Split(body, ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) < 3 {
		return false
	}

	unique := make(map[[32]byte]bool)
	for _, s := range sentences {
		unique[sha256.Sum256([]byte(s))] = true
	}
	return float64(len(unique))/float64(len(sentences)) < 0.7
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
