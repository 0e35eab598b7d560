package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bekzodm/sponsorhunt/internal/httpx"
	"github.com/bekzodm/sponsorhunt/internal/notify"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/store"
	"github.com/bekzodm/sponsorhunt/internal/textmatch"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ErrorUnknown},
		{"corrupt state", &store.CorruptRecordError{Title: "t", Err: errors.New("bad ts")}, ErrorCorruptState},
		{"match stage", &pipeline.MatchStageError{Title: "t", Err: errors.New("boom")}, ErrorMatchStage},
		{"no documents", textmatch.ErrNoDocuments, ErrorMatchStage},
		{"dispatch", &notify.DispatchError{Err: errors.New("smtp down")}, ErrorDispatch},
		{"rate limited fetch", &httpx.FetchError{Status: 429}, ErrorRateLimit},
		{"server error fetch", &httpx.FetchError{Status: 503}, ErrorNetwork},
		{"timeout", context.DeadlineExceeded, ErrorNetwork},
		{"plain", errors.New("whatever"), ErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyWrapped(t *testing.T) {
	inner := &store.CorruptRecordError{Title: "t", Err: errors.New("bad ts")}
	wrapped := errors.Join(errors.New("outer"), inner)
	assert.Equal(t, ErrorCorruptState, Classify(wrapped))
}

func TestSnapshotCounters(t *testing.T) {
	before := Snapshot()

	AddRecordsScraped(3)
	AddRecordsNew(2)
	AddMatchesFound(1)
	IncError(ErrorDispatch, "dispatch")

	after := Snapshot()
	assert.Equal(t, before.RecordsScraped+3, after.RecordsScraped)
	assert.Equal(t, before.RecordsNew+2, after.RecordsNew)
	assert.Equal(t, before.MatchesFound+1, after.MatchesFound)
	assert.Equal(t, before.ErrorsTotal+1, after.ErrorsTotal)
	assert.GreaterOrEqual(t, after.ErrorsByStage["dispatch"], uint64(1))
}
