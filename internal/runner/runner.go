// Package runner drives one batch end to end: collect, dedup and prune,
// persist the merged set, match against the roster, dispatch the digest,
// and commit emailSent flags only after the dispatch is confirmed.
package runner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bekzodm/sponsorhunt/internal/config"
	"github.com/bekzodm/sponsorhunt/internal/notify"
	"github.com/bekzodm/sponsorhunt/internal/observability"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/roster"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

// Collector produces the raw records for a run. The LinkedIn scraper is
// the production implementation.
type Collector interface {
	FetchJobs(ctx context.Context) ([]store.JobRecord, error)
}

// RosterLoader reloads the reference dataset. It is a function so runs
// always see the current file.
type RosterLoader func() ([]roster.ReferenceEmployer, error)

type Runner struct {
	cfg       *config.Config
	records   store.RecordStore
	collector Collector
	loadRef   RosterLoader
	pipe      *pipeline.Pipeline
	sink      notify.Sink

	mu          sync.Mutex
	lastMatches []pipeline.MatchResult
	lastRunAt   time.Time
}

func New(cfg *config.Config, records store.RecordStore, collector Collector, loadRef RosterLoader, pipe *pipeline.Pipeline, sink notify.Sink) *Runner {
	return &Runner{
		cfg:       cfg,
		records:   records,
		collector: collector,
		loadRef:   loadRef,
		pipe:      pipe,
		sink:      sink,
	}
}

// RunOnce executes a single batch. Only an unreadable roster or record
// store is returned as an error; collection and dispatch failures are
// logged and absorbed so the schedule keeps running.
func (r *Runner) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()
	log.Printf("Runner: starting batch at %s", started.Format(store.ScrapedAtLayout))

	employers, err := r.loadRef()
	if err != nil {
		observability.IncError(observability.ErrorStore, "roster")
		return fmt.Errorf("runner: load roster: %w", err)
	}

	prior, err := r.records.Load(ctx)
	if err != nil {
		observability.IncError(observability.ErrorStore, "store")
		return fmt.Errorf("runner: load state: %w", err)
	}

	scraped, err := r.collector.FetchJobs(ctx)
	if err != nil {
		// A failed scrape still prunes and persists prior state.
		observability.IncError(observability.Classify(err), "collect")
		log.Printf("Runner: collection failed, continuing with empty batch: %v", err)
		scraped = nil
	}
	observability.AddRecordsScraped(len(scraped))

	tracker := pipeline.NewTracker(prior, time.Duration(r.cfg.RetentionWindowSeconds)*time.Second)
	merged := tracker.Merge(scraped, started)
	observability.AddRecordsNew(len(merged.New))
	observability.AddRecordsPruned(merged.Pruned)
	for i := 0; i < merged.Corrupt; i++ {
		observability.IncError(observability.ErrorCorruptState, "tracker")
	}
	log.Printf("Runner: %d scraped, %d new, %d pruned, %d corrupt",
		len(scraped), len(merged.New), merged.Pruned, merged.Corrupt)

	// Commit the collection result before matching so new records survive
	// a later failure.
	if err := r.records.Save(ctx, merged.Records); err != nil {
		observability.IncError(observability.ErrorStore, "store")
		return fmt.Errorf("runner: save state: %w", err)
	}

	matches := r.pipe.Run(merged.Records, roster.Names(employers))
	observability.AddMatchesFound(len(matches))

	r.lastMatches = matches
	r.lastRunAt = started

	if err := r.dispatch(ctx, merged.Records, matches); err != nil {
		observability.IncError(observability.Classify(err), "dispatch")
		log.Printf("Runner: %v; emailSent flags not persisted", err)
	}

	observability.IncRunsCompleted()
	observability.ObserveRunDuration(time.Since(started).Seconds())
	return nil
}

// dispatch sends the digest and, only on confirmed success, marks the
// matched records emailed and persists them. Flags and digest succeed or
// fail together.
func (r *Runner) dispatch(ctx context.Context, records []store.JobRecord, matches []pipeline.MatchResult) error {
	digest, err := pipeline.BuildDigest(matches, time.Now())
	if err != nil {
		return err
	}
	if digest == nil {
		log.Printf("Runner: no matches, skipping digest")
		return nil
	}

	if err := r.sink.Dispatch(ctx, digest); err != nil {
		return err
	}
	observability.IncDigestsSent()
	log.Printf("Runner: digest dispatched with %d matches", len(digest.Rows))

	pipeline.MarkEmailed(records, matches)
	if err := r.records.Save(ctx, records); err != nil {
		// The digest went out but the flags did not stick; the next run
		// would re-email these matches, so surface it loudly.
		return fmt.Errorf("persist emailSent flags after dispatch: %w", err)
	}
	return nil
}

// LastMatches returns the results of the most recent batch for the API.
func (r *Runner) LastMatches() ([]pipeline.MatchResult, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastMatches, r.lastRunAt
}
