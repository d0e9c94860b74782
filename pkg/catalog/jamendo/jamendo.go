// pkg/catalog/jamendo/jamendo.go - Jamendo royalty-free catalog search

package jamendo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cerberussg/soundmatch/pkg/catalog"
)

const (
	defaultBaseURL = "https://api.jamendo.com/v3.0"
	maxQueryTags   = 5
)

// Searcher implements the catalog.Searcher interface for the Jamendo
// tracks API.
type Searcher struct {
	baseURL  string
	clientID string
	client   *http.Client
}

var _ catalog.Searcher = (*Searcher)(nil)

// Option configures the searcher.
type Option func(*Searcher)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds the HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) { s.client.Timeout = d }
}

// New builds a Jamendo searcher with the given client id.
func New(clientID string, opts ...Option) *Searcher {
	s := &Searcher{
		baseURL:  defaultBaseURL,
		clientID: clientID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type tracksResponse struct {
	Results []struct {
		ID         json.Number `json:"id"`
		Name       string      `json:"name"`
		ArtistName string      `json:"artist_name"`
		Audio      string      `json:"audio"`
		LicenseURL string      `json:"license_ccurl"`
		MusicInfo  struct {
			Tags struct {
				Genres      []string `json:"genres"`
				Instruments []string `json:"instruments"`
				VarTags     []string `json:"vartags"`
			} `json:"tags"`
		} `json:"musicinfo"`
	} `json:"results"`
}

// Search queries the tracks endpoint with the leading keywords as fuzzy
// tags, ordered by popularity, and normalizes the candidates.
func (s *Searcher) Search(ctx context.Context, keywords []string, limit int) ([]catalog.Candidate, error) {
	if len(keywords) > maxQueryTags {
		keywords = keywords[:maxQueryTags]
	}

	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("tags", strings.Join(keywords, ","))
	params.Set("fuzzytags", "1")
	params.Set("include", "musicinfo")
	params.Set("boost", "popularity_total")
	params.Set("audioformat", "mp32")

	searchURL := fmt.Sprintf("%s/tracks/?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jamendo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jamendo: API returned status %d", resp.StatusCode)
	}

	var tracks tracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("jamendo: parse response: %w", err)
	}

	candidates := make([]catalog.Candidate, 0, len(tracks.Results))
	for _, t := range tracks.Results {
		// Tracks without playable audio are useless as suggestions.
		if t.Audio == "" {
			continue
		}
		var tags []string
		tags = append(tags, t.MusicInfo.Tags.Genres...)
		tags = append(tags, t.MusicInfo.Tags.Instruments...)
		tags = append(tags, t.MusicInfo.Tags.VarTags...)

		candidates = append(candidates, catalog.Candidate{
			ID:       t.ID.String(),
			Title:    t.Name,
			Artist:   t.ArtistName,
			Tags:     tags,
			License:  t.LicenseURL,
			AudioURL: t.Audio,
		})
	}
	return candidates, nil
}
