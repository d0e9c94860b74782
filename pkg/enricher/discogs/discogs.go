// pkg/enricher/discogs/discogs.go - Discogs release-catalog lookup

package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cerberussg/soundmatch/pkg/enricher"
)

const (
	defaultBaseURL   = "https://api.discogs.com"
	defaultUserAgent = "soundmatch/0.1.0 (https://github.com/cerberussg/soundmatch)"
)

// Provider implements the enricher.Provider interface for the Discogs
// database search, supplying release styles, genres and the release year.
type Provider struct {
	baseURL   string
	userAgent string
	key       string
	secret    string
	client    *http.Client
	limiter   *rate.Limiter
}

var _ enricher.Provider = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit overrides the politeness limiter (requests per second).
// Discogs is strict about request spacing.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) { p.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithTimeout bounds each HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New builds a Discogs provider authenticated with consumer key/secret.
func New(key, secret string, opts ...Option) *Provider {
	p := &Provider{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		key:       key,
		secret:    secret,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider's registry name.
func (p *Provider) Name() string {
	return "discogs"
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Year   string   `json:"year"`
	Genre  []string `json:"genre"`
	Style  []string `json:"style"`
	Type   string   `json:"type"`
	Styles []string `json:"styles"` // some endpoints use the plural key
}

// Enrich searches Discogs for a master release first and falls back to a
// general release search, then extracts styles, genres and the year.
func (p *Provider) Enrich(ctx context.Context, title, artist string) (*enricher.Record, error) {
	query := artist + " " + title

	result, err := p.search(ctx, query, "master")
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, err = p.search(ctx, query, "release")
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, enricher.ErrNotFound
	}

	record := &enricher.Record{
		Genres: result.Genre,
		// Discogs styles are finer-grained than genres; they land in the
		// tag bucket of the normalized record.
		Tags: append(result.Style, result.Styles...),
	}
	if year := parseYear(result.Year); year > 0 {
		record.Year = year
	}
	return record, nil
}

func (p *Provider) search(ctx context.Context, query, searchType string) (*searchResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", searchType)
	params.Set("per_page", "1")
	params.Set("key", p.key)
	params.Set("secret", p.secret)

	searchURL := fmt.Sprintf("%s/database/search?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discogs: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusTooManyRequests:
		return nil, enricher.ErrRateLimit
	default:
		return nil, fmt.Errorf("discogs: API returned status %d", resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("discogs: parse response: %w", err)
	}
	if len(search.Results) == 0 {
		return nil, nil
	}
	return &search.Results[0], nil
}

func parseYear(s string) int {
	year := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
