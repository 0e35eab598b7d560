package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekzodm/sponsorhunt/internal/config"
	"github.com/bekzodm/sponsorhunt/internal/notify"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/roster"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

type fakeCollector struct {
	jobs []store.JobRecord
	err  error
}

func (f *fakeCollector) FetchJobs(context.Context) ([]store.JobRecord, error) {
	return f.jobs, f.err
}

type fakeSink struct {
	dispatched []*pipeline.Digest
	err        error
}

func (f *fakeSink) Dispatch(_ context.Context, d *pipeline.Digest) error {
	if f.err != nil {
		return &notify.DispatchError{Err: f.err}
	}
	f.dispatched = append(f.dispatched, d)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.StatePath = filepath.Join(t.TempDir(), "database.json")
	return cfg
}

func testEmployers() ([]roster.ReferenceEmployer, error) {
	return []roster.ReferenceEmployer{{Name: "Acme Corp"}, {Name: "Globex Inc"}}, nil
}

func newTestRunner(t *testing.T, cfg *config.Config, collector Collector, sink notify.Sink) (*Runner, *store.FileStore) {
	t.Helper()
	rules := pipeline.Rules{
		ScrapeKeywords:     cfg.ScrapeKeywords,
		RoleKeywords:       cfg.RoleKeywords,
		EntryLevelKeywords: cfg.EntryLevelKeywords,
		ExcludedKeywords:   cfg.ExcludedKeywords,
	}
	pipe := pipeline.New(rules, pipeline.TFIDFMatcher{MinN: cfg.NgramMin, MaxN: cfg.NgramMax}, cfg.MatchThreshold)
	fs := store.NewFileStore(cfg.StatePath)
	return New(cfg, fs, collector, testEmployers, pipe, sink), fs
}

func scrapedJob(t *testing.T, title, company string, at time.Time) store.JobRecord {
	t.Helper()
	rec, err := store.NewJobRecord(title, company, "Boston, MA", "Recent",
		"https://example.com/jobs/"+title, "LinkedIn", at)
	require.NoError(t, err)
	return rec
}

func TestRunOnceEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now()
	collector := &fakeCollector{jobs: []store.JobRecord{
		scrapedJob(t, "Entry Level Data Analyst", "Acme Corporation", now),
		scrapedJob(t, "Junior ML Engineer", "*********", now),
	}}
	sink := &fakeSink{}
	r, fs := newTestRunner(t, cfg, collector, sink)

	require.NoError(t, r.RunOnce(context.Background()))

	require.Len(t, sink.dispatched, 1)
	require.Len(t, sink.dispatched[0].Rows, 1)
	assert.Equal(t, "Acme Corp", sink.dispatched[0].Rows[0].MatchedEmployer)
	assert.GreaterOrEqual(t, sink.dispatched[0].Rows[0].Score, 0.5)

	persisted, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	byTitle := map[string]store.JobRecord{}
	for _, rec := range persisted {
		byTitle[rec.Title] = rec
	}
	assert.True(t, byTitle["Entry Level Data Analyst"].EmailSent)
	assert.False(t, byTitle["Junior ML Engineer"].EmailSent)

	matches, runAt := r.LastMatches()
	require.Len(t, matches, 1)
	assert.False(t, runAt.IsZero())
}

func TestRunOnceIdempotent(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now()
	collector := &fakeCollector{jobs: []store.JobRecord{
		scrapedJob(t, "Entry Level Data Analyst", "Acme Corporation", now),
	}}
	sink := &fakeSink{}
	r, _ := newTestRunner(t, cfg, collector, sink)
	ctx := context.Background()

	require.NoError(t, r.RunOnce(ctx))
	require.NoError(t, r.RunOnce(ctx))

	// The second run sees the same scrape; the record is a known triple
	// with emailSent already persisted, so no second digest goes out.
	assert.Len(t, sink.dispatched, 1)
}

func TestRunOnceDispatchFailureKeepsFlagsUnset(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now()
	collector := &fakeCollector{jobs: []store.JobRecord{
		scrapedJob(t, "Entry Level Data Analyst", "Acme Corporation", now),
	}}
	sink := &fakeSink{err: errors.New("smtp down")}
	r, fs := newTestRunner(t, cfg, collector, sink)

	// Dispatch failure is absorbed, not fatal.
	require.NoError(t, r.RunOnce(context.Background()))

	persisted, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.False(t, persisted[0].EmailSent, "flags must not persist when dispatch fails")
}

func TestRunOncePrunesStaleRecords(t *testing.T) {
	cfg := testConfig(t)
	fs := store.NewFileStore(cfg.StatePath)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, fs.Save(ctx, []store.JobRecord{
		scrapedJob(t, "Fresh Analyst", "Acme Corp", now.Add(-30*time.Minute)),
		scrapedJob(t, "Stale Analyst", "Globex Inc", now.Add(-2*time.Hour)),
	}))

	r, _ := newTestRunner(t, cfg, &fakeCollector{}, &fakeSink{})
	r.records = fs
	require.NoError(t, r.RunOnce(ctx))

	persisted, err := fs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Fresh Analyst", persisted[0].Title)
}

func TestRunOnceCollectionFailureStillPersists(t *testing.T) {
	cfg := testConfig(t)
	fs := store.NewFileStore(cfg.StatePath)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, fs.Save(ctx, []store.JobRecord{
		scrapedJob(t, "Fresh Analyst", "Acme Corp", now.Add(-10*time.Minute)),
	}))

	r, _ := newTestRunner(t, cfg, &fakeCollector{err: errors.New("site unreachable")}, &fakeSink{})
	r.records = fs
	require.NoError(t, r.RunOnce(ctx))

	persisted, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestRunOnceRosterFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg, &fakeCollector{}, &fakeSink{})
	r.loadRef = func() ([]roster.ReferenceEmployer, error) {
		return nil, errors.New("no such file")
	}

	require.Error(t, r.RunOnce(context.Background()))
}
