// Package ingest contains the per-provider connectors and the orchestrator
// that fans out across them for one request.
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"newscollector/internal/core"
	"newscollector/internal/registry"
)

// ErrQuotaExhausted signals that a connector stopped early because its
// daily request quota was reached. Records gathered before exhaustion are
// still returned alongside it.
var ErrQuotaExhausted = errors.New("daily request quota exhausted")

// FetchOptions carries the per-request arguments every connector accepts.
// Empty Keywords means "no keyword filter". From/To, when set, bound the
// publication window inclusively on both ends.
type FetchOptions struct {
	Keywords []string
	Limit    int
	From     *time.Time
	To       *time.Time
}

// Connector is the uniform fetch contract: given keywords, a limit and an
// optional time window it yields raw records. A connector failure never
// affects another connector.
type Connector interface {
	// Fetch collects up to opts.Limit raw records. Implementations honour
	// ctx cancellation. The RSS connector treats an unparsable feed as zero
	// records; the API connector returns an error for an undecodable
	// response.
	Fetch(ctx context.Context, opts FetchOptions) ([]core.RawRecord, error)

	// Source returns the descriptor this connector collects for.
	Source() *registry.Source
}

// recordID derives the stable identity of a raw record from its source and URL.
func recordID(sourceID, url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceID+":"+url)).String()
}

// matchesKeywords reports whether any keyword occurs, case-insensitively,
// in the title or description. An empty keyword list matches everything.
func matchesKeywords(title, description string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	text := strings.ToLower(title + " " + description)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// languageHint derives a two-letter language code from a source locale
// such as "ko_KR".
func languageHint(locale string) string {
	if len(locale) >= 2 {
		return strings.ToLower(locale[:2])
	}
	return ""
}
