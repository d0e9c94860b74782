// pkg/synthesis/gemini/gemini.go - Google Gemini synthesizer

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cerberussg/soundmatch/pkg/enricher"
	"github.com/cerberussg/soundmatch/pkg/synthesis"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Synthesizer implements synthesis.Synthesizer on top of the Gemini
// generateContent REST endpoint.
type Synthesizer struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

var _ synthesis.Synthesizer = (*Synthesizer)(nil)

// Option configures the synthesizer.
type Option func(*Synthesizer)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(s *Synthesizer) { s.baseURL = strings.TrimRight(url, "/") }
}

// WithModel selects a Gemini model.
func WithModel(model string) Option {
	return func(s *Synthesizer) { s.model = model }
}

// WithTimeout bounds the HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.client.Timeout = d }
}

// New builds a Gemini synthesizer.
func New(apiKey string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze asks Gemini to describe the track and propose royalty-free
// search keywords, then parses the structured JSON reply.
func (s *Synthesizer) Analyze(ctx context.Context, meta enricher.MergedMetadata) (*synthesis.Analysis, error) {
	if s.apiKey == "" {
		return nil, errors.New("gemini: missing API key")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(meta)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, synthesis.ErrEmptyResponse
	}

	return parseAnalysis(genResp.Candidates[0].Content.Parts[0].Text)
}

// buildPrompt includes only the fields that are actually populated; the
// model's output quality drops when the prompt carries empty placeholders.
func buildPrompt(meta enricher.MergedMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the song %q by %q.\n", meta.Title, meta.Artist)

	if len(meta.Genres) > 0 {
		fmt.Fprintf(&b, "Known genres: %s.\n", strings.Join(meta.Genres, ", "))
	}
	if len(meta.Tags) > 0 {
		fmt.Fprintf(&b, "Community tags: %s.\n", strings.Join(meta.Tags, ", "))
	}
	if len(meta.MoodHints) > 0 {
		fmt.Fprintf(&b, "Mood hints: %s.\n", strings.Join(meta.MoodHints, ", "))
	}
	if len(meta.Instrumentation) > 0 {
		fmt.Fprintf(&b, "Instrumentation: %s.\n", strings.Join(meta.Instrumentation, ", "))
	}
	if meta.Year > 0 {
		fmt.Fprintf(&b, "Released: %d.\n", meta.Year)
	}
	if meta.Instrumental != nil && *meta.Instrumental {
		b.WriteString("The track is instrumental.\n")
	}
	if meta.Summary != "" {
		fmt.Fprintf(&b, "Background: %s\n", meta.Summary)
	}

	b.WriteString(`
Describe the likely mood, tempo, energy level, instrumentation and overall
vibe in 2-3 sentences, focused on characteristics useful for finding similar
royalty-free music. Then generate 5-7 keywords for searching a royalty-free
music library, most relevant first.

Respond with JSON only, in this exact shape:
{"description": "...", "keywords": ["...", "..."]}
`)
	return b.String()
}

// parseAnalysis strips markdown code fences the model sometimes wraps
// around its JSON and unmarshals the payload.
func parseAnalysis(text string) (*synthesis.Analysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis synthesis.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", synthesis.ErrBadResponse, err)
	}
	return &analysis, nil
}
