// pkg/enricher/enricher.go - Core interfaces and outcome types

package enricher

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotFound  = errors.New("no metadata found")
	ErrRateLimit = errors.New("rate limit exceeded")
	ErrAPIError  = errors.New("API error")
)

// Provider is the interface every enrichment adapter implements. Enrich is
// queried with the resolved title/artist and returns a normalized Record,
// ErrNotFound when the provider has nothing for the track, or any other
// error for transport/parse failures. Adapters never panic on provider-side
// errors.
type Provider interface {
	// Name returns the provider's registry name (e.g. "musicbrainz").
	Name() string

	// Enrich looks up supplementary metadata for an identified track.
	Enrich(ctx context.Context, title, artist string) (*Record, error)
}

// Record is the normalized shape every provider response is reduced to.
// Only the fields a provider actually knows are populated.
type Record struct {
	Title           string   `json:"title,omitempty"`
	Artist          string   `json:"artist,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	MoodHints       []string `json:"mood_hints,omitempty"`
	Instrumentation []string `json:"instrumentation,omitempty"`
	Year            int      `json:"year,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	Explicit        *bool    `json:"explicit,omitempty"`
	Instrumental    *bool    `json:"instrumental,omitempty"`
}

// Status tags a provider outcome.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Outcome is the per-provider result of one enrichment request. One
// Outcome is recorded per configured provider whether it succeeded or not;
// the merge only consumes successes, the rest are diagnostics.
type Outcome struct {
	Provider string  `json:"provider"`
	Status   Status  `json:"status"`
	Record   *Record `json:"record,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// MergedMetadata is the single record built from all successful outcomes
// using the field precedence table. Read-only once built.
type MergedMetadata struct {
	Title           string   `json:"title"`
	Artist          string   `json:"artist"`
	Genres          []string `json:"genres,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	MoodHints       []string `json:"mood_hints,omitempty"`
	Instrumentation []string `json:"instrumentation,omitempty"`
	Year            int      `json:"year,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Instrumental    *bool    `json:"instrumental,omitempty"`
}
