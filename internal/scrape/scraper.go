// Package scrape fetches the full article body behind a URL when the
// provider only returned a summary. It is an optional collaborator: the
// pipeline only calls it on explicit opt-in, and it never writes to the
// source registry.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"newscollector/internal/logger"
)

// Result is the outcome of one scrape.
type Result struct {
	Success  bool
	FullBody string
	Title    string
	Images   []string
	Err      error
	Latency  time.Duration
}

// RedirectDecoder resolves an aggregator-wrapped URL to the publisher URL.
// Returning the input unchanged is always safe.
type RedirectDecoder func(url string) string

// Config tunes the scraper.
type Config struct {
	MinBodyLength  int           // bodies shorter than this are scrape candidates
	Timeout        time.Duration // per-request HTTP timeout
	CacheTTL       time.Duration // per-URL result cache lifetime
	MaxRetries     int           // extra attempts after the first failure
	PerHostPerSec  float64       // per-host token bucket rate
	UserAgent      string
	MinImageWidth  int
	MinImageHeight int
	Decoder        RedirectDecoder
}

// DefaultConfig returns the scraper defaults: 2 req/s per host, a one-hour
// cache, and at most two retries.
func DefaultConfig() Config {
	return Config{
		MinBodyLength:  150,
		Timeout:        10 * time.Second,
		CacheTTL:       time.Hour,
		MaxRetries:     2,
		PerHostPerSec:  2,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		MinImageWidth:  100,
		MinImageHeight: 100,
	}
}

type cacheEntry struct {
	result  Result
	expires time.Time
}

// Scraper fetches and post-processes article pages. Its per-host limiters
// and URL cache are process-wide and safe for concurrent use.
type Scraper struct {
	cfg    Config
	client *http.Client

	mu       sync.Mutex
	cache    map[string]cacheEntry
	limiters map[string]*rate.Limiter

	now func() time.Time
}

// New builds a Scraper.
func New(cfg Config) *Scraper {
	def := DefaultConfig()
	if cfg.MinBodyLength <= 0 {
		cfg.MinBodyLength = def.MinBodyLength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.PerHostPerSec <= 0 {
		cfg.PerHostPerSec = def.PerHostPerSec
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MinImageWidth <= 0 {
		cfg.MinImageWidth = def.MinImageWidth
	}
	if cfg.MinImageHeight <= 0 {
		cfg.MinImageHeight = def.MinImageHeight
	}

	return &Scraper{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		cache:    make(map[string]cacheEntry),
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// ShouldScrape reports whether a body is short enough to warrant fetching
// the full article.
func (s *Scraper) ShouldScrape(body string) bool {
	return len(strings.TrimSpace(body)) < s.cfg.MinBodyLength
}

// Scrape fetches the article at rawURL, extracts the main text and images,
// and caches the result. It is idempotent per URL within the cache TTL.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) Result {
	if rawURL == "" {
		return Result{Err: errors.New("empty url")}
	}

	if cached, ok := s.fromCache(rawURL); ok {
		logger.Debug().Str("url", rawURL).Msg("scrape cache hit")
		return cached
	}

	target := rawURL
	if s.cfg.Decoder != nil {
		target = s.cfg.Decoder(rawURL)
	}

	start := s.now()
	result := s.fetchWithRetries(ctx, target)
	result.Latency = s.now().Sub(start)

	if result.Success {
		s.store(rawURL, result)
	}
	return result
}

// ScrapeBatch scrapes every URL whose existing body is too short, keyed by
// URL. URLs with a sufficient body are returned as successes unchanged.
func (s *Scraper) ScrapeBatch(ctx context.Context, bodies map[string]string) map[string]Result {
	results := make(map[string]Result, len(bodies))
	for u, body := range bodies {
		if !s.ShouldScrape(body) {
			results[u] = Result{Success: true, FullBody: body}
			continue
		}
		results[u] = s.Scrape(ctx, u)
	}
	return results
}

func (s *Scraper) fetchWithRetries(ctx context.Context, target string) Result {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := s.waitHost(ctx, target); err != nil {
			return Result{Err: err}
		}

		result, err := s.fetchOnce(ctx, target)
		if err == nil {
			return result
		}
		lastErr = err
		logger.Debug().Str("url", target).Int("attempt", attempt+1).Err(err).Msg("scrape attempt failed")

		if attempt < s.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return Result{Err: ctx.Err()}
			case <-time.After(time.Second):
			}
		}
	}
	return Result{Err: lastErr}
}

func (s *Scraper) fetchOnce(ctx context.Context, target string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return Result{}, fmt.Errorf("page did not parse: %w", err)
	}

	body := extractBody(doc)
	if body == "" {
		return Result{}, errors.New("no article body found")
	}

	return Result{
		Success:  true,
		FullBody: StripBoilerplate(body),
		Title:    extractTitle(doc),
		Images:   s.extractImages(doc, target),
	}, nil
}

// mainContentSelectors are tried in order; the first selection with text
// wins. The generic containers come last.
var mainContentSelectors = []string{
	"article", "main", ".main-content", ".entry-content", ".post-content",
	".post-body", ".article-body", "[role='main']", ".content", "#content",
}

func extractBody(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := normalizeText(sel.Text()); len(text) > 0 {
			return text
		}
	}
	return normalizeText(doc.Find("body").Text())
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && og != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func normalizeText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (s *Scraper) extractImages(doc *goquery.Document, base string) []string {
	seen := make(map[string]bool)
	var images []string

	add := func(src string) {
		abs := absoluteImageURL(src, base)
		if abs == "" || seen[abs] {
			return
		}
		if !ValidNewsImage(abs, s.cfg.MinImageWidth, s.cfg.MinImageHeight) {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	}

	if og, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		add(og)
	}
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			add(src)
		}
	})

	if len(images) > 5 {
		images = images[:5]
	}
	return images
}

func absoluteImageURL(src, base string) string {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return src
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func (s *Scraper) waitHost(ctx context.Context, target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("bad url %q: %w", target, err)
	}
	host := parsed.Hostname()

	s.mu.Lock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.PerHostPerSec), 1)
		s.limiters[host] = limiter
	}
	s.mu.Unlock()

	return limiter.Wait(ctx)
}

func (s *Scraper) fromCache(rawURL string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[rawURL]
	if !ok || s.now().After(entry.expires) {
		delete(s.cache, rawURL)
		return Result{}, false
	}
	return entry.result, true
}

func (s *Scraper) store(rawURL string, result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[rawURL] = cacheEntry{result: result, expires: s.now().Add(s.cfg.CacheTTL)}
}
