package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/bekzodm/sponsorhunt/internal/httpx"
	"github.com/bekzodm/sponsorhunt/internal/notify"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/store"
	"github.com/bekzodm/sponsorhunt/internal/textmatch"
)

const (
	ErrorNetwork      = "network"
	ErrorParsing      = "parsing"
	ErrorRateLimit    = "rate_limit"
	ErrorStore        = "store"
	ErrorCorruptState = "corrupt_state"
	ErrorMatchStage   = "match_stage"
	ErrorDispatch     = "dispatch"
	ErrorUnknown      = "unknown"
)

// Classify maps an error to a counter bucket using the typed errors the
// pipeline stages return.
func Classify(err error) string {
	if err == nil {
		return ErrorUnknown
	}

	var corrupt *store.CorruptRecordError
	if errors.As(err, &corrupt) {
		return ErrorCorruptState
	}
	var stage *pipeline.MatchStageError
	if errors.As(err, &stage) {
		return ErrorMatchStage
	}
	var dispatch *notify.DispatchError
	if errors.As(err, &dispatch) {
		return ErrorDispatch
	}
	if errors.Is(err, textmatch.ErrNoDocuments) {
		return ErrorMatchStage
	}

	var fetch *httpx.FetchError
	if errors.As(err, &fetch) {
		switch {
		case fetch.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		case fetch.Status >= 500:
			return ErrorNetwork
		default:
			return ErrorNetwork
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	return ErrorUnknown
}
