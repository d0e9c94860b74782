// pkg/enricher/wikipedia/wikipedia.go - Wikipedia summary lookup

package wikipedia

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

const (
	defaultBaseURL   = "https://en.wikipedia.org/w/api.php"
	defaultUserAgent = "soundmatch/0.1.0 (https://github.com/cerberussg/soundmatch)"
)

// Provider implements the enricher.Provider interface for the Wikipedia
// extracts API, supplying an encyclopedic summary of the track.
type Provider struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

var _ enricher.Provider = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithTimeout bounds each HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New builds a Wikipedia provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider's registry name.
func (p *Provider) Name() string {
	return "wikipedia"
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Enrich fetches the intro summary for the track's article, trying the
// disambiguated "Title (Artist song)" page title before the plain one.
func (p *Provider) Enrich(ctx context.Context, title, artist string) (*enricher.Record, error) {
	for _, term := range []string{
		fmt.Sprintf("%s (%s song)", title, artist),
		fmt.Sprintf("%s (song)", title),
		title,
	} {
		summary, err := p.summary(ctx, term)
		if err != nil {
			return nil, err
		}
		if summary != "" {
			return &enricher.Record{Summary: summary}, nil
		}
	}
	return nil, enricher.ErrNotFound
}

func (p *Provider) summary(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", term)
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia: API returned status %d", resp.StatusCode)
	}

	var query queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return "", fmt.Errorf("wikipedia: parse response: %w", err)
	}

	for pageID, page := range query.Query.Pages {
		// Page ID -1 means the article does not exist.
		if pageID == "-1" || page.Extract == "" {
			continue
		}
		return strings.TrimSpace(strings.ReplaceAll(page.Extract, "(listen)", "")), nil
	}
	return "", nil
}
