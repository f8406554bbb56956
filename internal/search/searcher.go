package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/logging"
	"github.com/tphakala/birdwalk/internal/observability"
)

// DefaultDebounce is the debounce window applied to live query input.
const DefaultDebounce = 300 * time.Millisecond

// WalkSearchFunc queries walks matching the query string.
type WalkSearchFunc func(ctx context.Context, query string) ([]datastore.WalkSummary, error)

// SpeciesSearchFunc queries sighted species matching the query string.
type SpeciesSearchFunc func(ctx context.Context, query string) ([]datastore.SpeciesSummary, error)

// Searcher maintains a continuously updated result list for a live query
// string. Query updates inside the debounce window coalesce into a single
// fetch; both sub-searches run concurrently and their results are joined
// walks-first once both resolve.
//
// A fetch whose query has been superseded while in flight is discarded:
// every SetQuery bumps a generation counter and results are applied only if
// the generation is still current on settlement.
type Searcher struct {
	walks    WalkSearchFunc
	species  SpeciesSearchFunc
	debounce time.Duration
	metrics  *observability.SearchMetrics
	logger   *slog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	results    []Result
	loading    bool
	updates    chan struct{}
	closed     bool
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce overrides the debounce window, used by tests.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) {
		s.debounce = d
	}
}

// WithMetrics attaches search metrics.
func WithMetrics(m *observability.SearchMetrics) Option {
	return func(s *Searcher) {
		s.metrics = m
	}
}

// Fetch runs both sub-searches concurrently and merges their results once
// both resolve, walk matches always first regardless of which sub-search
// resolved first. A query shorter than MinQueryLength returns empty without
// issuing either sub-search.
func Fetch(ctx context.Context, walks WalkSearchFunc, species SpeciesSearchFunc, query string) ([]Result, error) {
	if len(query) < MinQueryLength {
		return []Result{}, nil
	}

	var walkResults []datastore.WalkSummary
	var speciesResults []datastore.SpeciesSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		walkResults, err = walks(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		speciesResults, err = species(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Result, 0, len(walkResults)+len(speciesResults))
	for i := range walkResults {
		merged = append(merged, WalkResult{walkResults[i]})
	}
	for i := range speciesResults {
		merged = append(merged, SpeciesResult{speciesResults[i]})
	}
	return merged, nil
}

// New creates a Searcher over the two sub-search functions.
func New(walks WalkSearchFunc, species SpeciesSearchFunc, opts ...Option) *Searcher {
	s := &Searcher{
		walks:    walks,
		species:  species,
		debounce: DefaultDebounce,
		logger:   logging.ForService("search"),
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery updates the live query string. A query shorter than
// MinQueryLength clears results and loading synchronously without issuing a
// request. Otherwise the loading flag is set immediately and a debounce timer
// is (re)started; only the last update within the window triggers a fetch.
func (s *Searcher) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	// Cancel a pending timer before anything else so the
	// one-fetch-per-window guarantee holds.
	if s.timer != nil {
		if s.timer.Stop() && s.metrics != nil {
			s.metrics.CoalescedInputs.Inc()
		}
		s.timer = nil
	}

	// Supersede any in-flight fetch.
	s.generation++
	gen := s.generation

	if len(query) < MinQueryLength {
		s.results = nil
		s.loading = false
		s.notifyLocked()
		return
	}

	s.loading = true
	s.notifyLocked()

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(gen, query)
	})
}

// fire runs both sub-searches concurrently and applies the merged result,
// unless the query was superseded while the fetch was pending or in flight.
func (s *Searcher) fire(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DebounceFires.Inc()
	}

	merged, err := Fetch(context.Background(), s.walks, s.species, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation {
		// A newer query took over while this fetch was in flight.
		return
	}

	if err != nil {
		// Fail closed: the displayed list must not pretend the stale
		// results match the current query.
		if s.metrics != nil {
			s.metrics.Errors.Inc()
		}
		s.logger.Error("composite search failed, clearing results",
			"query", query,
			"error", err)
		s.results = nil
		s.loading = false
		s.notifyLocked()
		return
	}

	s.results = merged
	s.loading = false
	s.notifyLocked()
}

// Snapshot returns the current result list and loading flag.
func (s *Searcher) Snapshot() (results []Result, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results = make([]Result, len(s.results))
	copy(results, s.results)
	return results, s.loading
}

// Updates returns a channel that receives a signal whenever the searcher's
// state changes. Signals coalesce; receivers should read Snapshot after each.
func (s *Searcher) Updates() <-chan struct{} {
	return s.updates
}

// Close stops the searcher. Pending timers are cancelled and any in-flight
// fetch result is discarded.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	close(s.updates)
}

// notifyLocked signals state change without blocking. Callers hold s.mu.
func (s *Searcher) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
