// pkg/identify/acoustid/acoustid.go - AcoustID fingerprint recognition

package acoustid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cerberussg/soundmatch/pkg/identify"
)

const defaultBaseURL = "https://api.acoustid.org/v2"

// Provider resolves a chromaprint fingerprint to a track identity via the
// AcoustID lookup API.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ identify.Provider = (*Provider)(nil)

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

// New builds an AcoustID provider with the given application API key.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider's registry name.
func (p *Provider) Name() string {
	return "acoustid"
}

type lookupResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"recordings"`
	} `json:"results"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Identify looks the fingerprint up and returns the best-scored recording.
// Inputs without a fingerprint are not this provider's to answer.
func (p *Provider) Identify(ctx context.Context, in identify.Input) (*identify.TrackIdentity, error) {
	if in.Fingerprint == "" || in.Duration <= 0 {
		return nil, identify.ErrNotFound
	}

	params := url.Values{}
	params.Set("client", p.apiKey)
	params.Set("format", "json")
	params.Set("duration", strconv.Itoa(in.Duration))
	params.Set("fingerprint", in.Fingerprint)
	params.Set("meta", "recordings+compress")

	lookupURL := fmt.Sprintf("%s/lookup?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("acoustid: API returned status %d", resp.StatusCode)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("acoustid: parse response: %w", err)
	}
	if lookup.Status != "ok" {
		return nil, fmt.Errorf("acoustid: lookup failed: %s", lookup.Error.Message)
	}

	best := bestResult(lookup)
	if best == nil {
		return nil, identify.ErrNotFound
	}
	return best, nil
}

// bestResult picks the highest-scored result that actually names a
// recording with an artist.
func bestResult(lookup lookupResponse) *identify.TrackIdentity {
	var best *identify.TrackIdentity
	for _, result := range lookup.Results {
		for _, rec := range result.Recordings {
			if rec.Title == "" || len(rec.Artists) == 0 {
				continue
			}
			if best != nil && result.Score <= best.Confidence {
				continue
			}
			best = &identify.TrackIdentity{
				Title:      rec.Title,
				Artist:     rec.Artists[0].Name,
				Confidence: result.Score,
			}
		}
	}
	return best
}
