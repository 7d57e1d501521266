// Package normalize turns raw provider records into canonical articles:
// markup stripped, entities decoded, timestamps timezone-aware, categories
// mapped onto the closed vocabulary.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"newscollector/internal/core"
	"newscollector/internal/logger"
	"newscollector/internal/registry"
)

// Normalizer converts raw records into articles.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation sets the project timezone applied to zone-less timestamps.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithClock injects the time source used for fallback timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// New builds a Normalizer. The default project timezone is UTC.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BatchOptions tunes one batch normalization run.
type BatchOptions struct {
	// Sources maps source id to descriptor for tier attribution.
	Sources map[string]*registry.Source
	// FilterVideo drops broadcast/live-stream titles.
	FilterVideo bool
	// TargetDate, when set, keeps only articles published within
	// ToleranceDays of it.
	TargetDate    *time.Time
	ToleranceDays int
	// ExcludeKeywords drops articles mentioning any of these in the title.
	ExcludeKeywords []string
}

// Batch normalizes every record, dropping video titles, out-of-window
// dates and excluded keywords. A record that fails to normalize is logged
// and dropped; it never aborts the batch.
func (n *Normalizer) Batch(records []core.RawRecord, opts BatchOptions) []core.Article {
	tolerance := opts.ToleranceDays
	if tolerance <= 0 {
		tolerance = 1
	}

	var (
		out           []core.Article
		videoFiltered int
		dateFiltered  int
		excluded      int
	)

	for i := range records {
		raw := &records[i]
		title := raw.RawData["title"]

		if opts.FilterVideo && IsVideoTitle(title) {
			videoFiltered++
			continue
		}
		if matchesAny(title, opts.ExcludeKeywords) {
			excluded++
			continue
		}

		article, ok := n.Normalize(raw, opts.Sources[raw.SourceID])
		if !ok {
			continue
		}

		if opts.TargetDate != nil {
			// Timezone-aware distance; both instants compared on the UTC line.
			diff := article.PublishedAt.UTC().Sub(opts.TargetDate.UTC())
			if diff < 0 {
				diff = -diff
			}
			if diff > time.Duration(tolerance)*24*time.Hour {
				dateFiltered++
				continue
			}
		}

		out = append(out, article)
	}

	if videoFiltered > 0 {
		logger.Info().Int("count", videoFiltered).Msg("video/broadcast titles filtered")
	}
	if dateFiltered > 0 {
		logger.Info().Int("count", dateFiltered).Msg("articles outside date window filtered")
	}
	if excluded > 0 {
		logger.Info().Int("count", excluded).Msg("articles with excluded keywords filtered")
	}
	logger.Info().Int("normalized", len(out)).Int("input", len(records)).Msg("normalization complete")
	return out
}

// Normalize converts one raw record. The second return is false when the
// record has no usable title or URL.
func (n *Normalizer) Normalize(raw *core.RawRecord, source *registry.Source) (core.Article, bool) {
	data := raw.RawData

	title := CleanHTML(data["title"])
	if title == "" {
		title = truncateRunes(raw.Extracted, 200)
	}

	body := CleanHTML(firstNonEmpty(data["description"], data["summary"], data["content"], raw.RawHTML))
	if body == "" {
		body = raw.Extracted
	}

	if title == "" || raw.URL == "" {
		logger.Debug().Str("record", raw.ID).Msg("record has no title or url, dropped")
		return core.Article{}, false
	}

	publishedAt := n.resolvePublished(data, raw)
	sourceName := raw.SourceName
	tier := core.Tier2
	language := raw.Language

	if source != nil {
		tier = source.Tier
		if source.Name != "" {
			sourceName = source.Name
		}
		if lang := localeLanguage(source.DefaultLocale); lang != "" {
			language = lang
		}
	} else if hint := core.Tier(data["source_tier"]); hint.Valid() {
		tier = hint
	}
	if name := data["source_name"]; source == nil && name != "" {
		sourceName = name
	}
	if language == "" {
		language = "ko"
	}

	country := "US"
	if language == "ko" {
		country = "KR"
	}

	article := core.Article{
		ID:           uuid.NewString(),
		RawRecordID:  raw.ID,
		SourceID:     raw.SourceID,
		SourceName:   sourceName,
		SourceTier:   tier,
		Title:        title,
		Body:         body,
		Summary:      truncateRunes(body, 200),
		Author:       firstNonEmpty(data["author"], data["creator"]),
		PublishedAt:  publishedAt,
		Language:     language,
		Country:      country,
		Category:     InferCategory(firstNonEmpty(data["category"], data["section"]), title),
		Tags:         splitTags(data["tags"]),
		URL:          raw.URL,
		ImageURLs:    ExtractImageURLs(raw.RawHTML),
		ViewCount:    parseCount(data["view_count"]),
		ShareCount:   parseCount(data["share_count"]),
		CommentCount: parseCount(data["comment_count"]),
		LikeCount:    parseCount(data["like_count"]),
		CrawledAt:    raw.FetchedAt,
		NormalizedAt: n.now().UTC(),
	}
	return article, true
}

func (n *Normalizer) resolvePublished(data map[string]string, raw *core.RawRecord) time.Time {
	raws := firstNonEmpty(data["pubDate"], data["published"], data["pub_date"])
	if t, ok := ParseTime(raws, n.loc); ok {
		return t
	}
	if !raw.FetchedAt.IsZero() {
		return raw.FetchedAt.In(n.loc)
	}
	return n.now().In(n.loc)
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	breakTagRe    = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>`)
)

// CleanHTML strips markup and decodes entities, preserving paragraph
// boundaries as newlines and collapsing the rest of the whitespace.
// It is idempotent on already-clean text.
func CleanHTML(html string) string {
	if html == "" {
		return ""
	}

	text := scriptBlockRe.ReplaceAllString(html, "")
	text = styleBlockRe.ReplaceAllString(text, "")
	text = breakTagRe.ReplaceAllString(text, "\n")

	if strings.ContainsAny(text, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractImageURLs collects every <img src> in document order, dropping
// repeats while preserving the first occurrence.
func ExtractImageURLs(html string) []string {
	if !strings.Contains(html, "<img") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" || seen[src] {
			return
		}
		seen[src] = true
		urls = append(urls, src)
	})
	return urls
}

func matchesAny(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func localeLanguage(locale string) string {
	if len(locale) >= 2 {
		return strings.ToLower(locale[:2])
	}
	return ""
}
