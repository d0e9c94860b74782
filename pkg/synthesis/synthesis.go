// pkg/synthesis/synthesis.go - AI analysis stage

package synthesis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cerberussg/soundmatch/pkg/enricher"
)

// Common errors
var (
	ErrEmptyResponse = errors.New("synthesizer returned an empty response")
	ErrBadResponse   = errors.New("synthesizer response is malformed")
)

// Analysis is the structured output of the AI collaborator: a short
// natural-language description and keywords ordered by relevance.
type Analysis struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Synthesizer is the collaborator contract. Implementations return a raw
// Analysis or an error; validation happens in the Stage.
type Synthesizer interface {
	Analyze(ctx context.Context, meta enricher.MergedMetadata) (*Analysis, error)
}

// Stage drives the synthesizer and validates its output. Any failure
// (transport, malformed payload, empty keyword list) yields a nil Analysis
// and an error the pipeline records as a warning; synthesis never aborts
// the request.
type Stage struct {
	synthesizer Synthesizer
	logger      *slog.Logger
}

// NewStage builds the synthesis stage.
func NewStage(synthesizer Synthesizer, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{synthesizer: synthesizer, logger: logger}
}

// Synthesize produces a validated Analysis for the merged metadata.
// Keywords are deduplicated preserving their relevance order.
func (s *Stage) Synthesize(ctx context.Context, meta enricher.MergedMetadata) (*Analysis, error) {
	if s.synthesizer == nil {
		return nil, ErrEmptyResponse
	}

	analysis, err := s.synthesizer.Analyze(ctx, meta)
	if err != nil {
		s.logger.Warn("synthesis failed", "error", err)
		return nil, err
	}
	if analysis == nil || analysis.Description == "" {
		s.logger.Warn("synthesis returned no description")
		return nil, ErrEmptyResponse
	}

	keywords := dedupe(analysis.Keywords)
	if len(keywords) == 0 {
		s.logger.Warn("synthesis returned no keywords")
		return nil, ErrBadResponse
	}

	s.logger.Info("synthesis complete", "keywords", len(keywords))
	return &Analysis{Description: analysis.Description, Keywords: keywords}, nil
}

func dedupe(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
