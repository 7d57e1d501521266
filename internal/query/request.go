// Package query defines the request descriptor the pipeline consumes and
// its boundary validation.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"newscollector/internal/config"
)

// Preset names the weight tuple used to combine per-axis scores.
const (
	PresetQuality  = "quality"
	PresetTrending = "trending"
	PresetCredible = "credible"
	PresetLatest   = "latest"
)

// Grouping values for the response.
const (
	GroupNone   = "none"
	GroupDay    = "day"
	GroupSource = "source"
)

// Request is the validated descriptor of one collection run. It is
// immutable after construction; the pipeline never mutates it.
type Request struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
	Country  string `json:"country"`
	Language string `json:"language"`

	Categories      []string `json:"categories,omitempty" validate:"max=5,dive,oneof=politics economy society it science culture sports international entertainment"`
	Keywords        []string `json:"keywords,omitempty" validate:"max=10"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty"`

	Preset  string `json:"preset" validate:"oneof=quality trending credible latest"`
	GroupBy string `json:"group_by" validate:"oneof=none day source"`

	Limit  int `json:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" validate:"min=0"`

	VerifiedSourcesOnly bool `json:"verified_sources_only"`
	Diversity           bool `json:"diversity"`
}

// NewRequest returns a request hydrated from the configured defaults.
func NewRequest(cfg *config.Config) Request {
	d := cfg.Defaults
	return Request{
		Locale:              d.Locale,
		Timezone:            d.Timezone,
		Country:             d.Country,
		Language:            d.Language,
		Preset:              d.PopularityType,
		GroupBy:             d.GroupBy,
		Limit:               d.Limit,
		Offset:              d.Offset,
		Diversity:           d.Diversity,
		VerifiedSourcesOnly: d.VerifiedSourcesOnly,
	}
}

// ValidationError reports every constraint a request violates.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Violations, "; "))
}

var validate = validator.New()

// Validate checks every invariant and returns a *ValidationError listing
// all failing constraints, or nil when the request is valid.
func (r *Request) Validate() error {
	var violations []string

	if err := validate.Struct(r); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				violations = append(violations, describeFieldError(fe))
			}
		} else {
			violations = append(violations, err.Error())
		}
	}

	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		violations = append(violations, fmt.Sprintf("from (%s) is after to (%s)",
			r.From.Format(time.RFC3339), r.To.Format(time.RFC3339)))
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Location resolves the request timezone, falling back to UTC.
func (r *Request) Location() *time.Location {
	if r.Timezone != "" {
		if loc, err := time.LoadLocation(r.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}
