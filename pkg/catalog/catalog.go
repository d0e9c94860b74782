// pkg/catalog/catalog.go - Royalty-free catalog similarity search

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/cerberussg/soundmatch/pkg/enricher"
	"github.com/cerberussg/soundmatch/pkg/identify"
	"github.com/cerberussg/soundmatch/pkg/synthesis"
)

// Name-similarity weights. Titles are far more discriminating than artist
// names when ranking catalog candidates.
const (
	titleWeight  = 0.7
	artistWeight = 0.3

	tagScoreWeight  = 0.5
	nameScoreWeight = 0.5
)

// ErrNoSearcher is returned when no catalog collaborator is configured,
// so the caller can record the skipped search instead of dropping it.
var ErrNoSearcher = errors.New("no catalog searcher configured")

// Candidate is one royalty-free track returned by the catalog, scored
// against the original identity and keyword set.
type Candidate struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Tags       []string `json:"tags,omitempty"`
	License    string   `json:"license,omitempty"`
	AudioURL   string   `json:"audio_url,omitempty"`
	Similarity float64  `json:"similarity"`
}

// Searcher is the catalog collaborator contract: an ordered keyword list
// in, raw unscored candidates out.
type Searcher interface {
	Search(ctx context.Context, keywords []string, limit int) ([]Candidate, error)
}

// Stage builds the keyword query, calls the catalog and scores, filters
// and ranks the results.
type Stage struct {
	searcher      Searcher
	minSimilarity float64
	logger        *slog.Logger
}

// NewStage builds the similarity search stage. Candidates scoring below
// minSimilarity are discarded.
func NewStage(searcher Searcher, minSimilarity float64, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{searcher: searcher, minSimilarity: minSimilarity, logger: logger}
}

// FindSimilar queries the catalog with genres first (the most reliable
// signal) followed by the AI keywords in relevance order, then ranks the
// candidates descending by similarity and truncates to limit.
func (s *Stage) FindSimilar(ctx context.Context, identity identify.TrackIdentity, meta enricher.MergedMetadata, analysis *synthesis.Analysis, limit int) ([]Candidate, error) {
	if analysis == nil {
		return nil, nil
	}
	if s.searcher == nil {
		return nil, ErrNoSearcher
	}

	keywords := BuildQuery(meta, analysis)
	if len(keywords) == 0 {
		return nil, nil
	}

	// Over-fetch so the similarity floor still leaves enough candidates.
	raw, err := s.searcher.Search(ctx, keywords, limit*2)
	if err != nil {
		s.logger.Warn("catalog search failed", "error", err)
		return nil, err
	}

	var ranked []Candidate
	for _, cand := range raw {
		cand.Similarity = Score(identity, keywords, cand)
		if cand.Similarity < s.minSimilarity {
			continue
		}
		ranked = append(ranked, cand)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.logger.Info("catalog search complete",
		"keywords", len(keywords), "candidates", len(raw), "kept", len(ranked))
	return ranked, nil
}

// BuildQuery places merged-metadata genres ahead of the AI keywords,
// deduplicating case-insensitively while preserving order.
func BuildQuery(meta enricher.MergedMetadata, analysis *synthesis.Analysis) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(v string) {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	for _, g := range meta.Genres {
		add(g)
	}
	if analysis != nil {
		for _, k := range analysis.Keywords {
			add(k)
		}
	}
	return out
}

// Score combines the candidate's tag overlap with the query keywords and
// a token-set similarity between its title/artist and the identity's.
func Score(identity identify.TrackIdentity, keywords []string, cand Candidate) float64 {
	tagScore := overlapRatio(keywords, cand.Tags)
	nameScore := titleWeight*tokenJaccard(identity.Title, cand.Title) +
		artistWeight*tokenJaccard(identity.Artist, cand.Artist)
	return tagScoreWeight*tagScore + nameScoreWeight*nameScore
}

// overlapRatio is the share of query keywords present in the candidate's
// tag set, compared case-insensitively.
func overlapRatio(keywords, tags []string) float64 {
	if len(keywords) == 0 || len(tags) == 0 {
		return 0
	}
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[strings.ToLower(strings.TrimSpace(t))] = true
	}
	matched := 0
	for _, k := range keywords {
		if tagSet[strings.ToLower(strings.TrimSpace(k))] {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// tokenJaccard is word-set intersection over union of two strings.
func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?()[]\"'")
		if w != "" {
			set[w] = true
		}
	}
	return set
}
