// pkg/enricher/musicbrainz/types.go

package musicbrainz

// RecordingSearchResult represents the response from MusicBrainz recording search
type RecordingSearchResult struct {
	Created    string      `json:"created"`
	Count      int         `json:"count"`
	Offset     int         `json:"offset"`
	Recordings []Recording `json:"recordings"`
}

// Recording represents a MusicBrainz recording (song/track)
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length,omitempty"`
	Score        int            `json:"score"` // Search relevance score
	ArtistCredit []ArtistCredit `json:"artist-credit"`
}

// RecordingDetail represents detailed recording info with tags and genres
type RecordingDetail struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length,omitempty"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []Release      `json:"releases,omitempty"`
	Tags         []Tag          `json:"tags,omitempty"`
	Genres       []Genre        `json:"genres,omitempty"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Name       string `json:"name"`
	Joinphrase string `json:"joinphrase,omitempty"`
	Artist     Artist `json:"artist"`
}

// Artist represents a MusicBrainz artist
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

// Release represents a MusicBrainz release (album/single)
type Release struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status,omitempty"`
	Date    string `json:"date,omitempty"`
	Country string `json:"country,omitempty"`
}

// Genre represents a MusicBrainz genre
type Genre struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

// Tag represents a user-generated tag
type Tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}
