package observability

import (
	"sync"
	"sync/atomic"
)

// StatsSnapshot is a point-in-time copy of the pipeline counters, exposed
// on the /stats endpoint.
type StatsSnapshot struct {
	RecordsScraped uint64            `json:"records_scraped"`
	RecordsNew     uint64            `json:"records_new"`
	RecordsPruned  uint64            `json:"records_pruned"`
	MatchesFound   uint64            `json:"matches_found"`
	DigestsSent    uint64            `json:"digests_sent"`
	RunsCompleted  uint64            `json:"runs_completed"`
	ErrorsTotal    uint64            `json:"errors_total"`
	RunSecondsAvg  float64           `json:"run_seconds_avg"`
	ErrorsByStage  map[string]uint64 `json:"errors_by_stage,omitempty"`
	ErrorsByType   map[string]uint64 `json:"errors_by_type,omitempty"`
}

var (
	recordsScraped uint64
	recordsNew     uint64
	recordsPruned  uint64
	matchesFound   uint64
	digestsSent    uint64
	runsCompleted  uint64
	errorsTotal    uint64

	runCount uint64
	runNanos uint64

	statsMu       sync.Mutex
	errorsByStage = map[string]uint64{}
	errorsByType  = map[string]uint64{}
)

func AddRecordsScraped(n int) {
	if n > 0 {
		atomic.AddUint64(&recordsScraped, uint64(n))
	}
}

func AddRecordsNew(n int) {
	if n > 0 {
		atomic.AddUint64(&recordsNew, uint64(n))
	}
}

func AddRecordsPruned(n int) {
	if n > 0 {
		atomic.AddUint64(&recordsPruned, uint64(n))
	}
}

func AddMatchesFound(n int) {
	if n > 0 {
		atomic.AddUint64(&matchesFound, uint64(n))
	}
}

func IncDigestsSent() {
	atomic.AddUint64(&digestsSent, 1)
}

func IncRunsCompleted() {
	atomic.AddUint64(&runsCompleted, 1)
}

func ObserveRunDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&runCount, 1)
	atomic.AddUint64(&runNanos, uint64(seconds*1e9))
}

func IncError(errType, stage string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if stage == "" {
		stage = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByStage[stage]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	stageCopy := copyMap(errorsByStage)
	typeCopy := copyMap(errorsByType)
	statsMu.Unlock()

	count := atomic.LoadUint64(&runCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&runNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		RecordsScraped: atomic.LoadUint64(&recordsScraped),
		RecordsNew:     atomic.LoadUint64(&recordsNew),
		RecordsPruned:  atomic.LoadUint64(&recordsPruned),
		MatchesFound:   atomic.LoadUint64(&matchesFound),
		DigestsSent:    atomic.LoadUint64(&digestsSent),
		RunsCompleted:  atomic.LoadUint64(&runsCompleted),
		ErrorsTotal:    atomic.LoadUint64(&errorsTotal),
		RunSecondsAvg:  avg,
		ErrorsByStage:  stageCopy,
		ErrorsByType:   typeCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
