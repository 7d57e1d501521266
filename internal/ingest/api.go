package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newscollector/internal/core"
	"newscollector/internal/logger"
	"newscollector/internal/registry"
)

// Credentials carries the header-borne authentication of a search API.
// Header names vary per provider (e.g. X-Naver-Client-Id/-Secret), so the
// manifest operator supplies them alongside the values.
type Credentials struct {
	IDHeader     string
	ID           string
	SecretHeader string
	Secret       string
}

// apiEnvelope is the JSON shape search providers respond with. Some
// providers call the list "items", others "articles".
type apiEnvelope struct {
	Items    []apiItem `json:"items"`
	Articles []apiItem `json:"articles"`
	Total    int       `json:"total"`
}

type apiItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	OriginalLink string `json:"originallink"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
	Author       string `json:"author"`
	Category     string `json:"category"`
	ViewCount    *int64 `json:"view_count"`
	ShareCount   *int64 `json:"share_count"`
	CommentCount *int64 `json:"comment_count"`
}

// APIConnector collects a source through its JSON search API, paging until
// the limit is reached or the provider runs dry, under the source's rate
// budget.
type APIConnector struct {
	source   *registry.Source
	creds    Credentials
	client   *http.Client
	limiter  *rateCounter
	pageSize int
}

// NewAPIConnector builds a connector for one API source.
func NewAPIConnector(source *registry.Source, creds Credentials, timeout time.Duration) *APIConnector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &APIConnector{
		source: source,
		creds:  creds,
		client: &http.Client{Timeout: timeout},
		limiter: newRateCounter(
			source.RateLimit.RequestsPerMinute,
			source.RateLimit.RequestsPerHour,
			source.RateLimit.DailyQuota,
			nil,
		),
		pageSize: 100,
	}
}

// Source returns the connector's source descriptor.
func (c *APIConnector) Source() *registry.Source { return c.source }

// Fetch gathers up to opts.Limit records across as many pages as needed.
// When the daily quota runs out mid-gather, the records collected so far
// are returned together with ErrQuotaExhausted.
func (c *APIConnector) Fetch(ctx context.Context, opts FetchOptions) ([]core.RawRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = c.pageSize
	}

	var records []core.RawRecord
	offset := 0
	for len(records) < limit {
		wait, ok := c.limiter.allow()
		if !ok {
			logger.Warn().Str("source", c.source.ID).Msg("daily quota exhausted, returning partial results")
			return records, ErrQuotaExhausted
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(wait):
			}
		}

		pageSize := c.pageSize
		if remaining := limit - len(records); remaining < pageSize {
			pageSize = remaining
		}

		page, status, elapsed, err := c.fetchPage(ctx, opts, pageSize, offset)
		if err != nil {
			return records, err
		}
		if len(page) == 0 {
			break
		}

		for _, item := range page {
			if len(records) >= limit {
				break
			}
			if !matchesKeywords(item.Title, item.Description, opts.Keywords) {
				continue
			}
			records = append(records, c.toRecord(item, status, elapsed))
		}
		offset += len(page)
	}

	logger.Info().
		Str("source", c.source.ID).
		Int("records", len(records)).
		Int("quota_remaining", c.limiter.remainingToday()).
		Msg("api fetch complete")
	return records, nil
}

func (c *APIConnector) fetchPage(ctx context.Context, opts FetchOptions, size, offset int) ([]apiItem, int, time.Duration, error) {
	endpoint, err := c.buildURL(opts, size, offset)
	if err != nil {
		return nil, 0, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("User-Agent", c.source.UserAgent)
	if c.creds.IDHeader != "" {
		req.Header.Set(c.creds.IDHeader, c.creds.ID)
	}
	if c.creds.SecretHeader != "" {
		req.Header.Set(c.creds.SecretHeader, c.creds.Secret)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	elapsed := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, elapsed, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, elapsed, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := envelope.Items
	if len(items) == 0 {
		items = envelope.Articles
	}
	return items, resp.StatusCode, elapsed, nil
}

// buildURL composes the provider query. Date windowing uses the after:/
// before: query terms; both are exclusive on the provider side, so the
// window is widened by one day each way to keep the caller's inclusive
// semantics.
func (c *APIConnector) buildURL(opts FetchOptions, size, offset int) (string, error) {
	base, err := url.Parse(c.source.BaseURL)
	if err != nil {
		return "", fmt.Errorf("bad base endpoint %q: %w", c.source.BaseURL, err)
	}

	var terms []string
	if len(opts.Keywords) > 0 {
		terms = append(terms, strings.Join(opts.Keywords, " "))
	}
	if opts.From != nil {
		terms = append(terms, "after:"+opts.From.AddDate(0, 0, -1).Format("2006-01-02"))
	}
	if opts.To != nil {
		terms = append(terms, "before:"+opts.To.AddDate(0, 0, 1).Format("2006-01-02"))
	}

	q := base.Query()
	q.Set("query", strings.Join(terms, " "))
	q.Set("display", strconv.Itoa(size))
	q.Set("start", strconv.Itoa(offset+1))
	q.Set("sort", "date")
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *APIConnector) toRecord(item apiItem, status int, elapsed time.Duration) core.RawRecord {
	link := item.Link
	if item.OriginalLink != "" {
		link = item.OriginalLink
	}

	data := map[string]string{
		"title":       item.Title,
		"link":        link,
		"description": item.Description,
		"pubDate":     item.PubDate,
		"author":      item.Author,
		"category":    item.Category,
	}
	if item.ViewCount != nil {
		data["view_count"] = strconv.FormatInt(*item.ViewCount, 10)
	}
	if item.ShareCount != nil {
		data["share_count"] = strconv.FormatInt(*item.ShareCount, 10)
	}
	if item.CommentCount != nil {
		data["comment_count"] = strconv.FormatInt(*item.CommentCount, 10)
	}

	return core.RawRecord{
		ID:         recordID(c.source.ID, link),
		SourceID:   c.source.ID,
		SourceName: c.source.Name,
		RawData:    data,
		RawHTML:    item.Description,
		Extracted:  stripTags(item.Title + " " + item.Description),
		URL:        link,
		FetchedAt:  time.Now().UTC(),
		Language:   languageHint(c.source.DefaultLocale),
		HTTPStatus: status,
		Elapsed:    elapsed,
	}
}
