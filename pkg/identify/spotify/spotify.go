// pkg/identify/spotify/spotify.go - Spotify search identification

package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cerberussg/soundmatch/pkg/identify"
)

const searchLimit = 5

// Provider resolves a track through the Spotify Web API search endpoint.
// The precise mode (New) requires a title/artist pair and searches with
// field filters; the fuzzy mode (NewFuzzy) searches free text, deriving a
// query from the title/artist pair when no free-text query was given, so
// it serves as the fallback rung after a below-threshold precise match.
type Provider struct {
	client *spotify.Client
	fuzzy  bool
}

var _ identify.Provider = (*Provider)(nil)

// New builds a precise provider around an existing Spotify client.
func New(client *spotify.Client) *Provider {
	return &Provider{client: client}
}

// NewFuzzy builds the free-text fallback provider around the same client.
func NewFuzzy(client *spotify.Client) *Provider {
	return &Provider{client: client, fuzzy: true}
}

// NewClient builds a long-lived client-credentials Spotify client shared
// by the precise and fuzzy providers.
func NewClient(ctx context.Context, clientID, clientSecret string) *spotify.Client {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return spotify.New(config.Client(ctx))
}

// Name returns the provider's registry name.
func (p *Provider) Name() string {
	if p.fuzzy {
		return "spotify_fuzzy"
	}
	return "spotify"
}

// Identify searches Spotify and scores each candidate against the query
// with Jaro-Winkler similarity; the best candidate's score becomes the
// identity confidence, which the chain compares to its threshold.
func (p *Provider) Identify(ctx context.Context, in identify.Input) (*identify.TrackIdentity, error) {
	query, reference := p.buildQuery(in)
	if query == "" {
		return nil, identify.ErrNotFound
	}

	result, err := p.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("spotify: search failed: %w", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, identify.ErrNotFound
	}

	identity := bestMatch(result.Tracks.Tracks, reference)
	if identity == nil {
		return nil, identify.ErrNotFound
	}
	return identity, nil
}

// buildQuery returns the search query and the lowercase reference string
// candidates are scored against. An empty query means the input shape is
// not this provider's to answer.
func (p *Provider) buildQuery(in identify.Input) (query, reference string) {
	if p.fuzzy {
		raw := in.Query
		if raw == "" && in.Title != "" && in.Artist != "" {
			raw = in.Artist + " " + cleanTitle(in.Title)
		}
		return raw, strings.ToLower(raw)
	}

	if in.Title != "" && in.Artist != "" {
		return fmt.Sprintf("track:%q artist:%q", cleanTitle(in.Title), in.Artist),
			strings.ToLower(in.Artist + " " + cleanTitle(in.Title))
	}
	return "", ""
}

func bestMatch(tracks []spotify.FullTrack, reference string) *identify.TrackIdentity {
	jw := metrics.NewJaroWinkler()

	var best *identify.TrackIdentity
	for _, t := range tracks {
		if t.Name == "" || len(t.Artists) == 0 {
			continue
		}
		candidate := strings.ToLower(t.Artists[0].Name + " " + t.Name)
		score := strutil.Similarity(reference, candidate, jw)
		if best == nil || score > best.Confidence {
			best = &identify.TrackIdentity{
				Title:      t.Name,
				Artist:     t.Artists[0].Name,
				Confidence: score,
			}
		}
	}
	return best
}

// cleanTitle strips bracketed suffixes ("(Remastered 2011)" and the like)
// that hurt exact search matching.
func cleanTitle(title string) string {
	if idx := strings.IndexAny(title, "(["); idx != -1 {
		if trimmed := strings.TrimSpace(title[:idx]); trimmed != "" {
			return trimmed
		}
	}
	return title
}
