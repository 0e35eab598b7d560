package pipeline

import (
	"log"
	"time"

	"github.com/bekzodm/sponsorhunt/internal/store"
)

// Tracker decides which scraped records are new and rebuilds the persisted
// set on every run: prior records younger than the retention window plus
// all records scraped this run. Prior records age out of storage after the
// window whether or not they were ever matched or emailed.
type Tracker struct {
	prior     []store.JobRecord
	seen      map[string]struct{}
	retention time.Duration
}

func NewTracker(prior []store.JobRecord, retention time.Duration) *Tracker {
	seen := make(map[string]struct{}, len(prior))
	for _, r := range prior {
		seen[r.Key()] = struct{}{}
	}
	return &Tracker{prior: prior, seen: seen, retention: retention}
}

// IsNew reports whether no prior record shares the exact
// (title, company, location) triple.
func (t *Tracker) IsNew(rec store.JobRecord) bool {
	_, ok := t.seen[rec.Key()]
	return !ok
}

// MergeResult is the rebuilt persisted set plus pruning bookkeeping.
type MergeResult struct {
	Records []store.JobRecord
	New     []store.JobRecord
	Pruned  int
	Corrupt int
}

// Merge filters scraped down to records the tracker has not seen, tags them
// email_sent=false, and merges them with the freshness-bounded prior set.
// A prior record with an unparseable timestamp is logged and dropped; one
// bad row must not stall pruning for the rest.
func (t *Tracker) Merge(scraped []store.JobRecord, now time.Time) MergeResult {
	var result MergeResult

	cutoff := now.Add(-t.retention)
	for _, r := range t.prior {
		at, err := r.ScrapedTime()
		if err != nil {
			log.Printf("Tracker: dropping corrupt record %q at %q: %v", r.Title, r.Company, err)
			result.Corrupt++
			continue
		}
		if at.Before(cutoff) {
			result.Pruned++
			continue
		}
		result.Records = append(result.Records, r)
	}

	for _, r := range scraped {
		if !t.IsNew(r) {
			continue
		}
		r.EmailSent = false
		result.New = append(result.New, r)
		result.Records = append(result.Records, r)
		t.seen[r.Key()] = struct{}{}
	}

	return result
}
