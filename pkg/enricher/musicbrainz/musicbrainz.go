// pkg/enricher/musicbrainz/musicbrainz.go - MusicBrainz tag/taxonomy lookup

package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cerberussg/soundmatch/pkg/enricher"
)

const (
	defaultBaseURL   = "https://musicbrainz.org/ws/2"
	defaultUserAgent = "soundmatch/0.1.0 (https://github.com/cerberussg/soundmatch)"
	searchLimit      = 5
)

// Hint vocabularies for sorting community tags into the mood and
// instrumentation buckets of the normalized record.
var (
	moodWords = map[string]bool{
		"happy": true, "sad": true, "dark": true, "upbeat": true,
		"melancholic": true, "cheerful": true, "calm": true, "energetic": true,
		"mellow": true, "intense": true, "soft": true, "powerful": true,
		"dreamy": true, "aggressive": true, "romantic": true, "relaxing": true,
	}
	instrumentWords = map[string]bool{
		"piano": true, "guitar": true, "acoustic": true, "orchestral": true,
		"strings": true, "synth": true, "drums": true, "bass": true,
		"horns": true, "vocal": true, "a cappella": true, "electronic": true,
	}
)

// Provider implements the enricher.Provider interface for MusicBrainz,
// supplying community tags, genres and a release year for an identified
// track.
type Provider struct {
	baseURL   string
	userAgent string
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

// WithUserAgent sets the descriptive User-Agent MusicBrainz requires.
func WithUserAgent(ua string) Option {
	return func(p *Provider) { p.userAgent = ua }
}

// WithRateLimit overrides the politeness limiter (requests per second).
func WithRateLimit(rps float64) Option {
	return func(p *Provider) { p.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithTimeout bounds each HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New builds a MusicBrainz provider. The default limiter keeps to the
// 1 req/s the MusicBrainz guidelines ask for.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
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
	return "musicbrainz"
}

// Enrich searches for the recording, fetches its tags/genres and reduces
// them to the normalized record shape.
func (p *Provider) Enrich(ctx context.Context, title, artist string) (*enricher.Record, error) {
	recordings, err := p.searchRecordings(ctx, title, artist)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz recording search failed: %w", err)
	}
	if len(recordings) == 0 {
		return nil, enricher.ErrNotFound
	}

	best := findBestRecordingMatch(recordings, artist, title)
	if best == nil {
		return nil, enricher.ErrNotFound
	}

	detail, err := p.lookupRecording(ctx, best.ID)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz recording lookup failed: %w", err)
	}

	return convert(detail), nil
}

func (p *Provider) searchRecordings(ctx context.Context, title, artist string) ([]Recording, error) {
	query := fmt.Sprintf(`artist:"%s" AND recording:"%s"`, artist, title)

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fmt", "json")

	var result RecordingSearchResult
	if err := p.get(ctx, fmt.Sprintf("%s/recording?%s", p.baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}
	return result.Recordings, nil
}

func (p *Provider) lookupRecording(ctx context.Context, recordingID string) (*RecordingDetail, error) {
	params := url.Values{}
	params.Set("inc", "tags+genres+releases")
	params.Set("fmt", "json")

	var detail RecordingDetail
	if err := p.get(ctx, fmt.Sprintf("%s/recording/%s?%s", p.baseURL, recordingID, params.Encode()), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (p *Provider) get(ctx context.Context, requestURL string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return enricher.ErrRateLimit
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// findBestRecordingMatch prefers exact title/artist matches, then the
// search server's own relevance score.
func findBestRecordingMatch(recordings []Recording, targetArtist, targetTitle string) *Recording {
	bestScore := 0
	var best *Recording

	for i, recording := range recordings {
		score := recording.Score

		if strings.EqualFold(recording.Title, targetTitle) {
			score += 10
		}
		for _, credit := range recording.ArtistCredit {
			if strings.EqualFold(credit.Artist.Name, targetArtist) {
				score += 10
				break
			}
		}

		if score > bestScore {
			bestScore = score
			best = &recordings[i]
		}
	}

	return best
}

func convert(detail *RecordingDetail) *enricher.Record {
	record := &enricher.Record{
		Title: detail.Title,
	}
	if len(detail.ArtistCredit) > 0 {
		record.Artist = detail.ArtistCredit[0].Artist.Name
	}

	for _, g := range detail.Genres {
		if g.Name != "" {
			record.Genres = append(record.Genres, g.Name)
		}
	}
	for _, t := range detail.Tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			continue
		}
		switch {
		case moodWords[name]:
			record.MoodHints = append(record.MoodHints, name)
		case instrumentWords[name]:
			record.Instrumentation = append(record.Instrumentation, name)
		default:
			record.Tags = append(record.Tags, name)
		}
	}

	record.Year = earliestReleaseYear(detail.Releases)
	return record
}

func earliestReleaseYear(releases []Release) int {
	year := 0
	for _, r := range releases {
		if len(r.Date) < 4 {
			continue
		}
		y, err := strconv.Atoi(r.Date[:4])
		if err != nil {
			continue
		}
		if year == 0 || y < year {
			year = y
		}
	}
	return year
}
