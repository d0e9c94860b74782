// pkg/enricher/merge.go - Field-level precedence merge

package enricher

// Field names the mergeable parts of a Record.
type Field string

const (
	FieldTitle           Field = "title"
	FieldArtist          Field = "artist"
	FieldGenres          Field = "genres"
	FieldTags            Field = "tags"
	FieldMoodHints       Field = "mood_hints"
	FieldInstrumentation Field = "instrumentation"
	FieldYear            Field = "year"
	FieldSummary         Field = "summary"
	FieldInstrumental    Field = "instrumental"
)

// Precedence is the static per-field ordering of provider names that
// drives the merge. For scalar fields the first provider with a non-empty
// value wins; for list fields values are unioned in precedence order with
// first-seen duplicates removed. Adding or reordering a provider is a
// table edit, not a logic change.
type Precedence map[Field][]string

// DefaultPrecedence ranks providers by how much each is trusted for a
// given field: Musixmatch for canonical naming and flags, MusicBrainz for
// community tags, Discogs for release-catalog styles and year.
func DefaultPrecedence() Precedence {
	return Precedence{
		FieldTitle:           {"musixmatch", "musicbrainz", "discogs"},
		FieldArtist:          {"musixmatch", "musicbrainz", "discogs"},
		FieldGenres:          {"musixmatch", "musicbrainz", "discogs"},
		FieldTags:            {"musicbrainz", "discogs", "musixmatch"},
		FieldMoodHints:       {"musicbrainz", "musixmatch"},
		FieldInstrumentation: {"musicbrainz", "discogs"},
		FieldYear:            {"discogs", "musicbrainz", "musixmatch"},
		FieldSummary:         {"wikipedia"},
		FieldInstrumental:    {"musixmatch", "musicbrainz"},
	}
}

// Merge folds all successful outcomes into a single MergedMetadata using
// the precedence table. Title and artist always default to the identity's
// values; enrichment can refine but never blank them. The result is
// deterministic for a given set of outcomes.
func Merge(title, artist string, outcomes []Outcome, prec Precedence) MergedMetadata {
	byName := make(map[string]*Record, len(outcomes))
	for _, o := range outcomes {
		if o.Status == StatusSuccess && o.Record != nil {
			byName[o.Provider] = o.Record
		}
	}

	merged := MergedMetadata{Title: title, Artist: artist}

	if v := firstString(byName, prec[FieldTitle], func(r *Record) string { return r.Title }); v != "" {
		merged.Title = v
	}
	if v := firstString(byName, prec[FieldArtist], func(r *Record) string { return r.Artist }); v != "" {
		merged.Artist = v
	}
	merged.Genres = unionLists(byName, prec[FieldGenres], func(r *Record) []string { return r.Genres })
	merged.Tags = unionLists(byName, prec[FieldTags], func(r *Record) []string { return r.Tags })
	merged.MoodHints = unionLists(byName, prec[FieldMoodHints], func(r *Record) []string { return r.MoodHints })
	merged.Instrumentation = unionLists(byName, prec[FieldInstrumentation], func(r *Record) []string { return r.Instrumentation })
	merged.Summary = firstString(byName, prec[FieldSummary], func(r *Record) string { return r.Summary })

	for _, name := range prec[FieldYear] {
		if r, ok := byName[name]; ok && r.Year > 0 {
			merged.Year = r.Year
			break
		}
	}
	for _, name := range prec[FieldInstrumental] {
		if r, ok := byName[name]; ok && r.Instrumental != nil {
			merged.Instrumental = r.Instrumental
			break
		}
	}

	return merged
}

func firstString(byName map[string]*Record, order []string, get func(*Record) string) string {
	for _, name := range order {
		if r, ok := byName[name]; ok {
			if v := get(r); v != "" {
				return v
			}
		}
	}
	return ""
}

// unionLists concatenates list values in precedence order, dropping
// duplicates while preserving first-seen position, so lower-precedence
// providers still contribute supplementary values.
func unionLists(byName map[string]*Record, order []string, get func(*Record) []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range order {
		r, ok := byName[name]
		if !ok {
			continue
		}
		for _, v := range get(r) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
