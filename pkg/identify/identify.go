// pkg/identify/identify.go - Track identification stage and fallback chain

package identify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Common errors
var (
	ErrNoMatch    = errors.New("no provider identified the track")
	ErrNotFound   = errors.New("track not found")
	ErrNoProvider = errors.New("no identification providers configured")
)

// Input is the raw signal the pipeline starts from. Exactly one of the
// three shapes is expected to be populated: fingerprint+duration,
// title+artist, or a free-text query.
type Input struct {
	// Chromaprint/AudD fingerprint with track duration in seconds.
	Fingerprint string
	Duration    int

	// Recognized or user-supplied title/artist pair.
	Title  string
	Artist string

	// Free-text search query.
	Query string
}

// TrackIdentity is the resolved canonical identity of a track. It is
// produced once by the chain and never mutated afterwards.
type TrackIdentity struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Provider resolves a TrackIdentity from an input signal. A provider that
// cannot act on the given input shape (e.g. a fingerprint recognizer given
// only a text query) returns ErrNotFound, as does a provider that looked
// and found nothing. Transport and parse failures are returned as regular
// errors; the chain treats both the same way and falls through.
type Provider interface {
	Name() string
	Identify(ctx context.Context, in Input) (*TrackIdentity, error)
}

// Chain evaluates providers in a fixed fallback order and returns the
// first identity at or above the configured confidence threshold.
type Chain struct {
	providers     []Provider
	minConfidence float64
	logger        *slog.Logger
}

// NewChain builds an identification chain. Providers are attempted in the
// order given.
func NewChain(providers []Provider, minConfidence float64, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		providers:     providers,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Identify runs the fallback chain. Lower-confidence or empty results fall
// through to the next provider; if no provider clears the threshold the
// chain returns ErrNoMatch, the pipeline's one fatal outcome.
func (c *Chain) Identify(ctx context.Context, in Input) (*TrackIdentity, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProvider
	}

	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		identity, err := provider.Identify(ctx, in)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				c.logger.Warn("identification provider failed",
					"provider", provider.Name(), "error", err)
			}
			continue
		}
		if identity == nil {
			continue
		}

		if identity.Confidence < c.minConfidence {
			c.logger.Debug("identification below threshold",
				"provider", provider.Name(),
				"confidence", identity.Confidence,
				"threshold", c.minConfidence)
			continue
		}

		identity.Source = provider.Name()
		c.logger.Info("track identified",
			"provider", provider.Name(),
			"title", identity.Title,
			"artist", identity.Artist,
			"confidence", identity.Confidence)
		return identity, nil
	}

	return nil, fmt.Errorf("%w (threshold %.2f)", ErrNoMatch, c.minConfidence)
}
