// pkg/pipeline/pipeline.go - End-to-end enrichment pipeline controller

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cerberussg/soundmatch/pkg/catalog"
	"github.com/cerberussg/soundmatch/pkg/enricher"
	"github.com/cerberussg/soundmatch/pkg/identify"
	"github.com/cerberussg/soundmatch/pkg/synthesis"
)

// ErrNotIdentified is the pipeline's single fatal outcome: no provider in
// the identification chain cleared the confidence threshold.
var ErrNotIdentified = errors.New("track could not be identified")

// State names the pipeline's progress for logging and diagnostics.
type State string

const (
	StateIdentifying      State = "identifying"
	StateEnriching        State = "enriching"
	StateSynthesizing     State = "synthesizing"
	StateSearchingSimilar State = "searching_similar"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Result is the terminal aggregate returned to the caller. Analysis and
// SimilarTracks are independently optional; every degradation that emptied
// one of them is recorded in Warnings.
type Result struct {
	Identity      identify.TrackIdentity  `json:"identity"`
	Outcomes      []enricher.Outcome      `json:"provider_outcomes"`
	Metadata      enricher.MergedMetadata `json:"metadata"`
	Analysis      *synthesis.Analysis     `json:"analysis,omitempty"`
	SimilarTracks []catalog.Candidate     `json:"similar_tracks"`
	Warnings      []string                `json:"warnings,omitempty"`
}

// Controller sequences identification, enrichment, synthesis and
// similarity search. Collaborators are injected at construction so tests
// can substitute fakes per stage.
type Controller struct {
	chain      *identify.Chain
	enrich     *enricher.Orchestrator
	synthesize *synthesis.Stage
	search     *catalog.Stage
	limit      int
	logger     *slog.Logger
}

// New builds a pipeline controller. limit caps the similar-track list.
func New(chain *identify.Chain, enrich *enricher.Orchestrator, synthesize *synthesis.Stage, search *catalog.Stage, limit int, logger *slog.Logger) *Controller {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		chain:      chain,
		enrich:     enrich,
		synthesize: synthesize,
		search:     search,
		limit:      limit,
		logger:     logger,
	}
}

// Process runs the whole pipeline for one input. Identification failure is
// the only error returned; once a track is identified every later stage
// degrades into warnings and the call still succeeds with partial data.
func (c *Controller) Process(ctx context.Context, in identify.Input) (*Result, error) {
	c.logger.Debug("pipeline state", "state", StateIdentifying)
	identity, err := c.chain.Identify(ctx, in)
	if err != nil {
		c.logger.Info("pipeline state", "state", StateFailed, "error", err)
		if errors.Is(err, identify.ErrNoMatch) || errors.Is(err, identify.ErrNoProvider) {
			return nil, fmt.Errorf("%w: %v", ErrNotIdentified, err)
		}
		return nil, err
	}

	result := &Result{
		Identity:      *identity,
		SimilarTracks: []catalog.Candidate{},
	}

	c.logger.Debug("pipeline state", "state", StateEnriching)
	result.Metadata, result.Outcomes = c.enrich.Enrich(ctx, identity.Title, identity.Artist)
	for _, o := range result.Outcomes {
		if o.Status == enricher.StatusError {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("enrichment provider %s failed: %s", o.Provider, o.Error))
		}
	}

	c.logger.Debug("pipeline state", "state", StateSynthesizing)
	analysis, err := c.synthesize.Synthesize(ctx, result.Metadata)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("synthesis failed: %v", err))
	}
	result.Analysis = analysis

	// Similar-track search depends on the keyword set; without an
	// analysis the stage is skipped, not attempted with weaker input.
	if analysis != nil {
		c.logger.Debug("pipeline state", "state", StateSearchingSimilar)
		tracks, err := c.search.FindSimilar(ctx, *identity, result.Metadata, analysis, c.limit)
		switch {
		case errors.Is(err, catalog.ErrNoSearcher):
			result.Warnings = append(result.Warnings,
				"catalog searcher not configured, similar-track search skipped")
		case err != nil:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("catalog search failed: %v", err))
		}
		if tracks != nil {
			result.SimilarTracks = tracks
		}
	}

	c.logger.Info("pipeline state", "state", StateDone,
		"title", result.Metadata.Title,
		"artist", result.Metadata.Artist,
		"similar_tracks", len(result.SimilarTracks),
		"warnings", len(result.Warnings))
	return result, nil
}
