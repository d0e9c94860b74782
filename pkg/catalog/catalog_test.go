// pkg/catalog/catalog_test.go

package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cerberussg/soundmatch/pkg/enricher"
	"github.com/cerberussg/soundmatch/pkg/identify"
	"github.com/cerberussg/soundmatch/pkg/synthesis"
)

type stubSearcher struct {
	candidates []Candidate
	err        error
	gotQuery   []string
	gotLimit   int
}

func (s *stubSearcher) Search(ctx context.Context, keywords []string, limit int) ([]Candidate, error) {
	s.gotQuery = keywords
	s.gotLimit = limit
	return s.candidates, s.err
}

func TestBuildQuery_GenresBeforeKeywords(t *testing.T) {
	meta := enricher.MergedMetadata{Genres: []string{"Drum & Bass", "jungle"}}
	analysis := &synthesis.Analysis{Keywords: []string{"atmospheric", "Jungle", "breakbeat"}}

	got := BuildQuery(meta, analysis)

	// "Jungle" is dropped as a case-insensitive duplicate of the genre.
	want := []string{"Drum & Bass", "jungle", "atmospheric", "breakbeat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected query %v, got %v", want, got)
	}
}

func TestBuildQuery_NilAnalysis(t *testing.T) {
	meta := enricher.MergedMetadata{Genres: []string{"ambient"}}

	got := BuildQuery(meta, nil)
	if len(got) != 1 || got[0] != "ambient" {
		t.Errorf("Expected [ambient], got %v", got)
	}
}

func TestScore_TagOverlap(t *testing.T) {
	identity := identify.TrackIdentity{Title: "Music", Artist: "LTJ Bukem"}
	keywords := []string{"jungle", "atmospheric"}

	full := Candidate{Title: "Other", Artist: "Other", Tags: []string{"jungle", "atmospheric"}}
	half := Candidate{Title: "Other", Artist: "Other", Tags: []string{"jungle"}}
	none := Candidate{Title: "Other", Artist: "Other", Tags: []string{"polka"}}

	if s := Score(identity, keywords, full); s != tagScoreWeight {
		t.Errorf("Expected full tag overlap score %.2f, got %.2f", tagScoreWeight, s)
	}
	if s := Score(identity, keywords, half); s != tagScoreWeight*0.5 {
		t.Errorf("Expected half tag overlap score %.2f, got %.2f", tagScoreWeight*0.5, s)
	}
	if s := Score(identity, keywords, none); s != 0 {
		t.Errorf("Expected zero score, got %.2f", s)
	}
}

func TestScore_NameSimilarity(t *testing.T) {
	identity := identify.TrackIdentity{Title: "Music", Artist: "LTJ Bukem"}

	sameTitle := Candidate{Title: "Music", Artist: "Nobody"}
	sameArtist := Candidate{Title: "Something Else", Artist: "LTJ Bukem"}

	titleScore := Score(identity, nil, sameTitle)
	artistScore := Score(identity, nil, sameArtist)

	if titleScore <= artistScore {
		t.Errorf("Title match should outweigh artist match: title=%.3f artist=%.3f", titleScore, artistScore)
	}
	if want := nameScoreWeight * titleWeight; titleScore != want {
		t.Errorf("Expected exact-title score %.3f, got %.3f", want, titleScore)
	}
}

func TestFindSimilar_RanksAndTruncates(t *testing.T) {
	identity := identify.TrackIdentity{Title: "Music", Artist: "LTJ Bukem"}
	analysis := &synthesis.Analysis{
		Description: "Atmospheric jungle.",
		Keywords:    []string{"jungle", "atmospheric"},
	}

	searcher := &stubSearcher{candidates: []Candidate{
		{ID: "weak", Title: "X", Artist: "Y", Tags: []string{"jungle"}},
		{ID: "strong", Title: "Z", Artist: "W", Tags: []string{"jungle", "atmospheric"}},
		{ID: "miss", Title: "Q", Artist: "R", Tags: []string{"polka"}},
	}}

	stage := NewStage(searcher, 0.2, nil)
	got, err := stage.FindSimilar(context.Background(), identity, enricher.MergedMetadata{}, analysis, 1)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if searcher.gotLimit != 2 {
		t.Errorf("Expected over-fetch limit 2, got %d", searcher.gotLimit)
	}
	if len(got) != 1 || got[0].ID != "strong" {
		t.Errorf("Expected single top candidate 'strong', got %v", got)
	}
	if got[0].Similarity <= 0 {
		t.Errorf("Expected a positive similarity, got %.3f", got[0].Similarity)
	}
}

func TestFindSimilar_FloorFiltersAll(t *testing.T) {
	identity := identify.TrackIdentity{Title: "Music", Artist: "LTJ Bukem"}
	analysis := &synthesis.Analysis{Description: "x", Keywords: []string{"jungle"}}

	searcher := &stubSearcher{candidates: []Candidate{
		{ID: "miss", Title: "Q", Artist: "R", Tags: []string{"polka"}},
	}}

	stage := NewStage(searcher, 0.3, nil)
	got, err := stage.FindSimilar(context.Background(), identity, enricher.MergedMetadata{}, analysis, 5)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected floor to drop everything, got %v", got)
	}
}

func TestFindSimilar_SearcherErrorPropagates(t *testing.T) {
	identity := identify.TrackIdentity{Title: "Music", Artist: "LTJ Bukem"}
	analysis := &synthesis.Analysis{Description: "x", Keywords: []string{"jungle"}}

	boom := errors.New("429 too many requests")
	stage := NewStage(&stubSearcher{err: boom}, 0.3, nil)

	_, err := stage.FindSimilar(context.Background(), identity, enricher.MergedMetadata{}, analysis, 5)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected searcher error, got %v", err)
	}
}

func TestFindSimilar_NilAnalysisSkips(t *testing.T) {
	stage := NewStage(&stubSearcher{}, 0.3, nil)

	got, err := stage.FindSimilar(context.Background(), identify.TrackIdentity{}, enricher.MergedMetadata{}, nil, 5)
	if err != nil || got != nil {
		t.Errorf("Expected nil, nil for missing analysis, got %v, %v", got, err)
	}
}

func TestFindSimilar_NoSearcherConfigured(t *testing.T) {
	stage := NewStage(nil, 0.3, nil)
	analysis := &synthesis.Analysis{Description: "x", Keywords: []string{"jungle"}}

	_, err := stage.FindSimilar(context.Background(), identify.TrackIdentity{}, enricher.MergedMetadata{}, analysis, 5)
	if !errors.Is(err, ErrNoSearcher) {
		t.Fatalf("Expected ErrNoSearcher, got %v", err)
	}
}

func TestTokenJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Music", "music", 1.0},
		{"disjoint", "Music", "Horizons", 0.0},
		{"partial", "deep blue sea", "blue sea shanty", 0.5},
		{"punctuation stripped", "Music (Original Mix)", "music original mix", 1.0},
		{"empty", "", "music", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenJaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("tokenJaccard(%q, %q) = %.3f, want %.3f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
