package ingest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newscollector/internal/core"
	"newscollector/internal/logger"
	"newscollector/internal/registry"
)

// publisherTiers maps well-known outlet names to tiers. Aggregator feeds
// (e.g. portal search feeds) name the true publisher per entry; when an
// entry's title carries a trailing " - Publisher" segment the tier of that
// publisher is recorded in the payload for the normalizer to pick up.
var publisherTiers = map[string]core.Tier{
	"연합뉴스": core.Tier1, "KBS": core.Tier1, "MBC": core.Tier1, "SBS": core.Tier1,
	"조선일보": core.Tier1, "중앙일보": core.Tier1, "한겨레": core.Tier1, "동아일보": core.Tier1,
	"YTN": core.Tier1, "JTBC": core.Tier1,
	"Reuters": core.Tier1, "AP": core.Tier1, "Bloomberg": core.Tier1, "BBC": core.Tier1, "CNN": core.Tier1,
	"매일경제": core.Tier2, "한국경제": core.Tier2, "뉴시스": core.Tier2, "뉴스1": core.Tier2,
	"아시아경제": core.Tier2, "서울신문": core.Tier2, "경향신문": core.Tier2, "한국일보": core.Tier2,
}

// RSSConnector collects a source's RSS 2.0 or Atom feed.
type RSSConnector struct {
	source *registry.Source
	client *http.Client
	parser *gofeed.Parser
}

// NewRSSConnector builds a connector for one RSS/Atom source.
func NewRSSConnector(source *registry.Source, timeout time.Duration) *RSSConnector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RSSConnector{
		source: source,
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Source returns the connector's source descriptor.
func (c *RSSConnector) Source() *registry.Source { return c.source }

// Fetch issues one GET against the feed URL and converts matching entries
// into raw records. An unparsable feed yields zero records, not an error.
func (c *RSSConnector) Fetch(ctx context.Context, opts FetchOptions) ([]core.RawRecord, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.source.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	feed, err := c.parser.Parse(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		logger.Warn().Str("source", c.source.ID).Err(err).Msg("feed did not parse, skipping")
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = len(feed.Items)
	}

	var records []core.RawRecord
	for _, item := range feed.Items {
		if len(records) >= limit {
			break
		}
		if !matchesKeywords(item.Title, item.Description, opts.Keywords) {
			continue
		}
		if !withinWindow(item.PublishedParsed, opts.From, opts.To) {
			continue
		}
		records = append(records, c.toRecord(item, resp.StatusCode, elapsed))
	}

	logger.Info().
		Str("source", c.source.ID).
		Int("records", len(records)).
		Dur("elapsed", elapsed).
		Msg("rss fetch complete")
	return records, nil
}

func (c *RSSConnector) toRecord(item *gofeed.Item, status int, elapsed time.Duration) core.RawRecord {
	data := map[string]string{
		"title":       item.Title,
		"link":        item.Link,
		"description": item.Description,
		"pubDate":     item.Published,
		"guid":        item.GUID,
	}
	if item.Author != nil {
		data["author"] = item.Author.Name
	}
	if len(item.Categories) > 0 {
		data["category"] = strings.Join(item.Categories, ",")
	}
	if publisher, tier := inferPublisherTier(item.Title); tier != "" {
		data["source_name"] = publisher
		data["source_tier"] = string(tier)
	}

	return core.RawRecord{
		ID:         recordID(c.source.ID, item.Link),
		SourceID:   c.source.ID,
		SourceName: c.source.Name,
		RawData:    data,
		RawHTML:    item.Description,
		Extracted:  stripTags(item.Title + " " + item.Description),
		URL:        item.Link,
		FetchedAt:  time.Now().UTC(),
		Language:   languageHint(c.source.DefaultLocale),
		HTTPStatus: status,
		Elapsed:    elapsed,
	}
}

// inferPublisherTier inspects the trailing " - Publisher" segment aggregator
// feeds append to entry titles.
func inferPublisherTier(title string) (string, core.Tier) {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return "", ""
	}
	publisher := strings.TrimSpace(title[idx+3:])
	if tier, ok := publisherTiers[publisher]; ok {
		return publisher, tier
	}
	return "", ""
}

// withinWindow checks an entry timestamp against an inclusive window.
// Entries without a parsed timestamp pass; the normalizer settles their
// publication time later.
func withinWindow(published, from, to *time.Time) bool {
	if published == nil {
		return true
	}
	if from != nil && published.Before(*from) {
		return false
	}
	if to != nil && published.After(*to) {
		return false
	}
	return true
}

var tagReplacer = strings.NewReplacer("<", " <", ">", "> ")

// stripTags removes markup for the best-effort extracted text field.
// The normalizer does the real cleanup with a proper HTML parser.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	inTag := false
	for _, r := range tagReplacer.Replace(s) {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
