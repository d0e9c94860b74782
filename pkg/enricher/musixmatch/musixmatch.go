// pkg/enricher/musixmatch/musixmatch.go - Musixmatch precise metadata lookup

package musixmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cerberussg/soundmatch/pkg/enricher"
)

const defaultBaseURL = "https://api.musixmatch.com/ws/1.1"

// Provider implements the enricher.Provider interface for Musixmatch. Its
// matcher endpoint resolves a title/artist pair to genres, a popularity
// rating and the explicit/instrumental flags.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ enricher.Provider = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds the HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New builds a Musixmatch provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider's registry name.
func (p *Provider) Name() string {
	return "musixmatch"
}

type matcherResponse struct {
	Message struct {
		Header struct {
			StatusCode int    `json:"status_code"`
			Hint       string `json:"hint"`
		} `json:"header"`
		Body json.RawMessage `json:"body"`
	} `json:"message"`
}

type trackBody struct {
	Track trackData `json:"track"`
}

type trackData struct {
	TrackName     string `json:"track_name"`
	ArtistName    string `json:"artist_name"`
	TrackRating   int    `json:"track_rating"`
	Explicit      int    `json:"explicit"`
	Instrumental  int    `json:"instrumental"`
	PrimaryGenres struct {
		MusicGenreList []struct {
			MusicGenre struct {
				MusicGenreName string `json:"music_genre_name"`
			} `json:"music_genre"`
		} `json:"music_genre_list"`
	} `json:"primary_genres"`
}

// Enrich calls matcher.track.get and normalizes the response.
func (p *Provider) Enrich(ctx context.Context, title, artist string) (*enricher.Record, error) {
	params := url.Values{}
	params.Set("apikey", p.apiKey)
	params.Set("q_track", title)
	params.Set("q_artist", artist)

	reqURL := fmt.Sprintf("%s/matcher.track.get?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musixmatch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musixmatch: API returned status %d", resp.StatusCode)
	}

	var matcher matcherResponse
	if err := json.NewDecoder(resp.Body).Decode(&matcher); err != nil {
		return nil, fmt.Errorf("musixmatch: parse response: %w", err)
	}

	// Musixmatch wraps its real status inside the envelope; 404 there is
	// a clean not-found, anything else non-200 is an API error.
	switch matcher.Message.Header.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, enricher.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: musixmatch status %d (%s)",
			enricher.ErrAPIError, matcher.Message.Header.StatusCode, matcher.Message.Header.Hint)
	}

	var body trackBody
	if err := json.Unmarshal(matcher.Message.Body, &body); err != nil {
		return nil, fmt.Errorf("musixmatch: parse track body: %w", err)
	}
	if body.Track.TrackName == "" {
		return nil, enricher.ErrNotFound
	}

	return convert(body.Track), nil
}

func convert(t trackData) *enricher.Record {
	var genres []string
	for _, g := range t.PrimaryGenres.MusicGenreList {
		if name := g.MusicGenre.MusicGenreName; name != "" {
			genres = append(genres, name)
		}
	}

	explicit := t.Explicit == 1
	instrumental := t.Instrumental == 1

	return &enricher.Record{
		Title:        t.TrackName,
		Artist:       t.ArtistName,
		Genres:       genres,
		Rating:       float64(t.TrackRating) / 100,
		Explicit:     &explicit,
		Instrumental: &instrumental,
	}
}
