// pkg/enricher/orchestrator_test.go

package enricher

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type stubEnricher struct {
	name   string
	record *Record
	err    error
	delay  time.Duration
}

func (s *stubEnricher) Name() string { return s.name }

func (s *stubEnricher) Enrich(ctx context.Context, title, artist string) (*Record, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.record, s.err
}

func TestOrchestrator_AllProvidersSucceed(t *testing.T) {
	providers := []Provider{
		&stubEnricher{name: "musixmatch", record: &Record{Title: "Music", Genres: []string{"Drum & Bass"}}},
		&stubEnricher{name: "musicbrainz", record: &Record{Tags: []string{"jungle"}}},
	}

	o := NewOrchestrator(providers, nil, time.Second, nil)
	merged, outcomes := o.Enrich(context.Background(), "music", "LTJ Bukem")

	if len(outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(outcomes))
	}
	for _, out := range outcomes {
		if out.Status != StatusSuccess {
			t.Errorf("Provider %s: expected success, got %s (%s)", out.Provider, out.Status, out.Error)
		}
	}
	if merged.Title != "Music" {
		t.Errorf("Expected merged title 'Music', got '%s'", merged.Title)
	}
}

func TestOrchestrator_FaultIsolation(t *testing.T) {
	providers := []Provider{
		&stubEnricher{name: "musixmatch", err: errors.New("upstream 500")},
		&stubEnricher{name: "musicbrainz", record: &Record{Genres: []string{"jungle"}}},
		&stubEnricher{name: "discogs", err: ErrNotFound},
	}

	o := NewOrchestrator(providers, nil, time.Second, nil)
	merged, outcomes := o.Enrich(context.Background(), "Music", "LTJ Bukem")

	if outcomes[0].Status != StatusError || outcomes[0].Error != "upstream 500" {
		t.Errorf("Expected error outcome for musixmatch, got %+v", outcomes[0])
	}
	if outcomes[1].Status != StatusSuccess {
		t.Errorf("Expected success outcome for musicbrainz, got %+v", outcomes[1])
	}
	if outcomes[2].Status != StatusNotFound {
		t.Errorf("Expected not_found outcome for discogs, got %+v", outcomes[2])
	}

	// The surviving provider's data still lands in the merge.
	if len(merged.Genres) != 1 || merged.Genres[0] != "jungle" {
		t.Errorf("Expected genres [jungle], got %v", merged.Genres)
	}
}

func TestOrchestrator_ProviderTimeout(t *testing.T) {
	providers := []Provider{
		&stubEnricher{name: "slow", delay: time.Second, record: &Record{Title: "never seen"}},
		&stubEnricher{name: "fast", record: &Record{Title: "Music"}},
	}

	o := NewOrchestrator(providers, nil, 20*time.Millisecond, nil)

	start := time.Now()
	_, outcomes := o.Enrich(context.Background(), "Music", "LTJ Bukem")
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("Slow provider was not bounded by the timeout, took %v", elapsed)
	}
	if outcomes[0].Status != StatusError {
		t.Errorf("Expected timed-out provider to report an error, got %+v", outcomes[0])
	}
	if outcomes[1].Status != StatusSuccess {
		t.Errorf("Expected fast provider to succeed, got %+v", outcomes[1])
	}
}

func TestOrchestrator_OutcomeOrderIsStable(t *testing.T) {
	providers := []Provider{
		&stubEnricher{name: "a", delay: 30 * time.Millisecond, record: &Record{}},
		&stubEnricher{name: "b", record: &Record{}},
		&stubEnricher{name: "c", delay: 10 * time.Millisecond, record: &Record{}},
	}

	o := NewOrchestrator(providers, nil, time.Second, nil)
	_, outcomes := o.Enrich(context.Background(), "Music", "LTJ Bukem")

	got := []string{outcomes[0].Provider, outcomes[1].Provider, outcomes[2].Provider}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected outcome order %v, got %v", want, got)
	}
}

func TestOrchestrator_NilRecordCountsAsNotFound(t *testing.T) {
	providers := []Provider{
		&stubEnricher{name: "empty"},
	}

	o := NewOrchestrator(providers, nil, time.Second, nil)
	_, outcomes := o.Enrich(context.Background(), "Music", "LTJ Bukem")

	if outcomes[0].Status != StatusNotFound {
		t.Errorf("Expected not_found for nil record, got %+v", outcomes[0])
	}
}

func TestOrchestrator_NoProviders(t *testing.T) {
	o := NewOrchestrator(nil, nil, time.Second, nil)
	merged, outcomes := o.Enrich(context.Background(), "Music", "LTJ Bukem")

	if len(outcomes) != 0 {
		t.Errorf("Expected no outcomes, got %d", len(outcomes))
	}
	if merged.Title != "Music" || merged.Artist != "LTJ Bukem" {
		t.Errorf("Expected identity carried through, got %+v", merged)
	}
}
