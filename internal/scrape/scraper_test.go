package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>Chip Exports Surge</title>
  <meta property="og:image" content="https://cdn.example.com/photos/main_800x600.jpg">
</head>
<body>
  <nav>site menu</nav>
  <article>
    <h1>Chip Exports Surge</h1>
    <p>Exports rose twenty percent in the second quarter.</p>
    <p>Analysts expect the trend to continue through the year.</p>
    <img src="/photos/inline_400x300.jpg">
    <img src="https://cdn.example.com/icons/share_btn.png">
  </article>
  <footer>© 2025 Example Media. All rights reserved.</footer>
</body>
</html>`

func newTestScraper(overrides ...func(*Config)) *Scraper {
	cfg := DefaultConfig()
	cfg.PerHostPerSec = 1000 // keep tests fast
	for _, o := range overrides {
		o(&cfg)
	}
	return New(cfg)
}

func TestScrapeExtractsArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(server.Close)

	s := newTestScraper()
	result := s.Scrape(context.Background(), server.URL+"/story")
	if !result.Success {
		t.Fatalf("scrape failed: %v", result.Err)
	}
	if !strings.Contains(result.FullBody, "Exports rose twenty percent") {
		t.Errorf("body missing article text: %q", result.FullBody)
	}
	if strings.Contains(result.FullBody, "site menu") {
		t.Error("navigation boilerplate should be removed")
	}
	if result.Title != "Chip Exports Surge" {
		t.Errorf("unexpected title: %q", result.Title)
	}

	for _, img := range result.Images {
		if strings.Contains(img, "share_btn") {
			t.Errorf("share button image should be rejected: %s", img)
		}
	}
	found := false
	for _, img := range result.Images {
		if strings.Contains(img, "main_800x600") {
			found = true
		}
	}
	if !found {
		t.Errorf("og:image should be kept, got %v", result.Images)
	}
}

func TestScrapeCaches(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(server.Close)

	s := newTestScraper()
	url := server.URL + "/story"
	first := s.Scrape(context.Background(), url)
	second := s.Scrape(context.Background(), url)

	if !first.Success || !second.Success {
		t.Fatal("both scrapes should succeed")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("second scrape should be served from cache, got %d requests", hits)
	}
}

func TestScrapeCacheExpires(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(server.Close)

	s := newTestScraper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	url := server.URL + "/story"
	s.Scrape(context.Background(), url)

	now = now.Add(2 * time.Hour) // past the 1h TTL
	s.Scrape(context.Background(), url)

	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expired cache entry should refetch, got %d requests", hits)
	}
}

func TestScrapeRetriesThenFails(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	s := newTestScraper(func(c *Config) { c.MaxRetries = 2 })
	result := s.Scrape(context.Background(), server.URL+"/story")
	if result.Success {
		t.Fatal("scrape should fail against a 503")
	}
	if result.Err == nil {
		t.Fatal("error must be reported in the result")
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("expected 1 attempt + 2 retries, got %d", hits)
	}
}

func TestScrapeEmptyURL(t *testing.T) {
	s := newTestScraper()
	if result := s.Scrape(context.Background(), ""); result.Success || result.Err == nil {
		t.Error("empty url should fail with an error")
	}
}

func TestRedirectDecoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/real" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(server.Close)

	s := newTestScraper(func(c *Config) {
		c.Decoder = func(u string) string {
			return strings.Replace(u, "/wrapped", "/real", 1)
		}
		c.MaxRetries = 0
	})

	result := s.Scrape(context.Background(), server.URL+"/wrapped")
	if !result.Success {
		t.Fatalf("decoder should route to the real page: %v", result.Err)
	}
}

func TestShouldScrape(t *testing.T) {
	s := newTestScraper()
	if !s.ShouldScrape("short summary") {
		t.Error("short bodies are scrape candidates")
	}
	if s.ShouldScrape(strings.Repeat("long enough body text ", 20)) {
		t.Error("long bodies should not be rescraped")
	}
}

func TestScrapeBatchSkipsSufficientBodies(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(server.Close)

	s := newTestScraper()
	long := strings.Repeat("already complete body text ", 20)
	results := s.ScrapeBatch(context.Background(), map[string]string{
		server.URL + "/short": "stub",
		server.URL + "/long":  long,
	})

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("only the short body should be fetched, got %d requests", hits)
	}
	if r := results[server.URL+"/long"]; !r.Success || r.FullBody != long {
		t.Error("sufficient bodies pass through unchanged")
	}
}

func TestValidNewsImage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/photos/story_800x600.jpg", true},
		{"https://cdn.example.com/photos/story.webp", true},
		{"https://cdn.example.com/icons/logo.png", false},
		{"https://cdn.example.com/pics/tiny_50x50.jpg", false},
		{"https://cdn.example.com/track/pixel.png", false},
		{"https://x.example.com/banner.jpg", false},
		{"https://x.example.com/doc.svg", false},
		{"relative/path.jpg", false},
		{"https://x.example.com/{{IMAGE}}", false},
	}
	for _, tt := range tests {
		if got := ValidNewsImage(tt.url, 100, 100); got != tt.want {
			t.Errorf("ValidNewsImage(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestStripBoilerplate(t *testing.T) {
	body := "기사 본문 첫 문단이다.\n홍길동 기자\nreporter@example.com\n관련 기사: 다른 이야기\nⓒ Example Media 무단 전재 금지\n\n\n\n본문 둘째 문단이다."
	got := StripBoilerplate(body)

	if strings.Contains(got, "기자\n") || strings.Contains(got, "@") {
		t.Errorf("byline should be stripped: %q", got)
	}
	if strings.Contains(got, "관련 기사") {
		t.Errorf("related list should be stripped: %q", got)
	}
	if strings.Contains(got, "ⓒ") {
		t.Errorf("copyright footer should be stripped: %q", got)
	}
	if !strings.Contains(got, "첫 문단") || !strings.Contains(got, "둘째 문단") {
		t.Errorf("article text must survive: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank-line runs should collapse")
	}
}
