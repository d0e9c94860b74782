// pkg/enricher/merge_test.go

package enricher

import (
	"reflect"
	"testing"
)

func successOutcome(provider string, r *Record) Outcome {
	return Outcome{Provider: provider, Status: StatusSuccess, Record: r}
}

func TestMerge_ScalarPrecedence(t *testing.T) {
	outcomes := []Outcome{
		successOutcome("musicbrainz", &Record{Title: "Music (Remastered)", Year: 1995}),
		successOutcome("discogs", &Record{Year: 1993}),
		successOutcome("musixmatch", &Record{Title: "Music"}),
	}

	merged := Merge("music", "LTJ Bukem", outcomes, DefaultPrecedence())

	// Musixmatch outranks MusicBrainz for title.
	if merged.Title != "Music" {
		t.Errorf("Expected title 'Music', got '%s'", merged.Title)
	}
	// Discogs outranks MusicBrainz for year.
	if merged.Year != 1993 {
		t.Errorf("Expected year 1993, got %d", merged.Year)
	}
	// Artist falls back to the identity value when no provider supplies one.
	if merged.Artist != "LTJ Bukem" {
		t.Errorf("Expected artist 'LTJ Bukem', got '%s'", merged.Artist)
	}
}

func TestMerge_ListUnionNotOverwrite(t *testing.T) {
	outcomes := []Outcome{
		successOutcome("musixmatch", &Record{Genres: []string{"Drum & Bass"}}),
		successOutcome("musicbrainz", &Record{Genres: []string{"jungle", "Drum & Bass"}}),
		successOutcome("discogs", &Record{Genres: []string{"Electronic"}}),
	}

	merged := Merge("Music", "LTJ Bukem", outcomes, DefaultPrecedence())

	want := []string{"Drum & Bass", "jungle", "Electronic"}
	if !reflect.DeepEqual(merged.Genres, want) {
		t.Errorf("Expected genres %v, got %v", want, merged.Genres)
	}
}

func TestMerge_SkipsFailedProviders(t *testing.T) {
	outcomes := []Outcome{
		{Provider: "musixmatch", Status: StatusError, Error: "timeout"},
		{Provider: "discogs", Status: StatusNotFound},
		successOutcome("musicbrainz", &Record{Title: "Horizons", Genres: []string{"ambient"}}),
	}

	merged := Merge("horizons", "LTJ Bukem", outcomes, DefaultPrecedence())

	if merged.Title != "Horizons" {
		t.Errorf("Expected title 'Horizons', got '%s'", merged.Title)
	}
	if len(merged.Genres) != 1 || merged.Genres[0] != "ambient" {
		t.Errorf("Expected genres [ambient], got %v", merged.Genres)
	}
}

func TestMerge_InstrumentalFlagPrecedence(t *testing.T) {
	yes := true
	no := false
	outcomes := []Outcome{
		successOutcome("musicbrainz", &Record{Instrumental: &no}),
		successOutcome("musixmatch", &Record{Instrumental: &yes}),
	}

	merged := Merge("Horizons", "LTJ Bukem", outcomes, DefaultPrecedence())

	if merged.Instrumental == nil || !*merged.Instrumental {
		t.Errorf("Expected instrumental=true from musixmatch, got %v", merged.Instrumental)
	}
}

func TestMerge_SummaryOnlyFromWikipedia(t *testing.T) {
	outcomes := []Outcome{
		successOutcome("musixmatch", &Record{Summary: "lyrics blurb"}),
		successOutcome("wikipedia", &Record{Summary: "A 1993 single by LTJ Bukem."}),
	}

	merged := Merge("Music", "LTJ Bukem", outcomes, DefaultPrecedence())

	if merged.Summary != "A 1993 single by LTJ Bukem." {
		t.Errorf("Expected wikipedia summary, got '%s'", merged.Summary)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	outcomes := []Outcome{
		successOutcome("musicbrainz", &Record{Tags: []string{"jungle", "breakbeat"}, MoodHints: []string{"mellow"}}),
		successOutcome("discogs", &Record{Tags: []string{"atmospheric", "jungle"}, Year: 1993}),
		successOutcome("musixmatch", &Record{Title: "Music", Genres: []string{"Drum & Bass"}}),
	}

	first := Merge("music", "LTJ Bukem", outcomes, DefaultPrecedence())
	for i := 0; i < 10; i++ {
		again := Merge("music", "LTJ Bukem", outcomes, DefaultPrecedence())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Merge not deterministic: run %d differs\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestMerge_NoOutcomes(t *testing.T) {
	merged := Merge("Music", "LTJ Bukem", nil, DefaultPrecedence())

	if merged.Title != "Music" || merged.Artist != "LTJ Bukem" {
		t.Errorf("Expected identity values to survive, got %+v", merged)
	}
	if merged.Genres != nil || merged.Year != 0 {
		t.Errorf("Expected empty enrichment fields, got %+v", merged)
	}
}
