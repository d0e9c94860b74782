// pkg/identify/acoustid/acoustid_test.go

package acoustid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cerberussg/soundmatch/pkg/identify"
)

func TestIdentify_BestScoredRecording(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("fingerprint") != "AQADtEmi" || q.Get("duration") != "341" {
			t.Errorf("Unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"results": [
				{"score": 0.62, "recordings": [{"title": "Music (Edit)", "artists": [{"name": "LTJ Bukem"}]}]},
				{"score": 0.91, "recordings": [{"title": "Music", "artists": [{"name": "LTJ Bukem"}]}]}
			]
		}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL))
	identity, err := provider.Identify(context.Background(), identify.Input{
		Fingerprint: "AQADtEmi",
		Duration:    341,
	})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}

	if identity.Title != "Music" || identity.Artist != "LTJ Bukem" {
		t.Errorf("Unexpected identity: %+v", identity)
	}
	if identity.Confidence != 0.91 {
		t.Errorf("Expected confidence 0.91, got %.2f", identity.Confidence)
	}
}

func TestIdentify_NoFingerprint(t *testing.T) {
	provider := New("test-key")
	_, err := provider.Identify(context.Background(), identify.Input{Query: "ltj bukem music"})
	if !errors.Is(err, identify.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for non-fingerprint input, got %v", err)
	}
}

func TestIdentify_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "results": []}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL))
	_, err := provider.Identify(context.Background(), identify.Input{Fingerprint: "AQAD", Duration: 200})
	if !errors.Is(err, identify.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestIdentify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "error": {"message": "invalid API key"}}`))
	}))
	defer server.Close()

	provider := New("bad-key", WithBaseURL(server.URL))
	_, err := provider.Identify(context.Background(), identify.Input{Fingerprint: "AQAD", Duration: 200})
	if err == nil || errors.Is(err, identify.ErrNotFound) {
		t.Fatalf("Expected an API error, got %v", err)
	}
}

func TestIdentify_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL))
	_, err := provider.Identify(context.Background(), identify.Input{Fingerprint: "AQAD", Duration: 200})
	if err == nil {
		t.Fatal("Expected an error for HTTP 500")
	}
}

func TestIdentify_SkipsRecordingsWithoutArtists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "ok",
			"results": [
				{"score": 0.95, "recordings": [{"title": "Untitled"}]},
				{"score": 0.70, "recordings": [{"title": "Music", "artists": [{"name": "LTJ Bukem"}]}]}
			]
		}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL))
	identity, err := provider.Identify(context.Background(), identify.Input{Fingerprint: "AQAD", Duration: 200})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if identity.Confidence != 0.70 {
		t.Errorf("Expected the artist-bearing recording to win, got %+v", identity)
	}
}
