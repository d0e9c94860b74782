// pkg/enricher/orchestrator.go - Concurrent provider fan-out and join

package enricher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultProviderTimeout = 15 * time.Second

// Orchestrator fans one enrichment request out to every configured
// provider concurrently, joins on all of them, and merges the successes.
// A failing provider degrades its own outcome only; it never blocks the
// others or aborts the request.
type Orchestrator struct {
	providers  []Provider
	precedence Precedence
	timeout    time.Duration
	logger     *slog.Logger
}

// NewOrchestrator builds an enrichment orchestrator. The timeout bounds
// each individual provider call, not the request as a whole.
func NewOrchestrator(providers []Provider, precedence Precedence, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if precedence == nil {
		precedence = DefaultPrecedence()
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		providers:  providers,
		precedence: precedence,
		timeout:    timeout,
		logger:     logger,
	}
}

// Enrich queries every provider with the identity's title/artist and
// returns the merged metadata plus one outcome per provider. Outcomes are
// ordered by the configured provider order regardless of completion order,
// so identical inputs always produce identical results.
func (o *Orchestrator) Enrich(ctx context.Context, title, artist string) (MergedMetadata, []Outcome) {
	outcomes := make([]Outcome, len(o.providers))

	var wg sync.WaitGroup
	for i, provider := range o.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			outcomes[i] = o.callProvider(ctx, p, title, artist)
		}(i, provider)
	}
	wg.Wait()

	merged := Merge(title, artist, outcomes, o.precedence)
	return merged, outcomes
}

func (o *Orchestrator) callProvider(ctx context.Context, p Provider, title, artist string) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	record, err := p.Enrich(callCtx, title, artist)
	elapsed := time.Since(start)

	switch {
	case err == nil && record != nil:
		o.logger.Debug("enrichment provider succeeded",
			"provider", p.Name(), "elapsed", elapsed)
		return Outcome{Provider: p.Name(), Status: StatusSuccess, Record: record}
	case err == nil || errors.Is(err, ErrNotFound):
		o.logger.Debug("enrichment provider found nothing",
			"provider", p.Name(), "elapsed", elapsed)
		return Outcome{Provider: p.Name(), Status: StatusNotFound}
	default:
		o.logger.Warn("enrichment provider failed",
			"provider", p.Name(), "elapsed", elapsed, "error", err)
		return Outcome{Provider: p.Name(), Status: StatusError, Error: err.Error()}
	}
}
