package normalize

import (
	"strings"
	"time"
)

// zonedFormats carry their own offset or zone name.
var zonedFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
}

// nakedFormats have no zone; they are interpreted in the project timezone.
var nakedFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006.01.02 15:04",
	"2006.01.02",
	"20060102",
}

// ParseTime parses a provider timestamp tolerantly, covering ISO 8601 and
// RFC 2822 style dates. Timestamps without a zone are anchored in loc so
// the result is always timezone-aware. The second return is false when no
// format matched.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, format := range zonedFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	for _, format := range nakedFormats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
