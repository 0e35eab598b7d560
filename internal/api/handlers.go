package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bekzodm/sponsorhunt/internal/observability"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load records: "+err.Error())
		return
	}
	if records == nil {
		records = []store.JobRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": records,
		"total": len(records),
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, runAt := s.runner.LastMatches()
	if matches == nil {
		matches = []pipeline.MatchResult{}
	}
	payload := map[string]interface{}{
		"items": matches,
		"total": len(matches),
	}
	if !runAt.IsZero() {
		payload["run_at"] = runAt.Format(store.ScrapedAtLayout)
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

// handleTriggerRun kicks off a batch in the background; the runner's lock
// serializes it against any scheduled run already in flight.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.runner.RunOnce(ctx); err != nil {
			log.Printf("API: triggered run failed: %v", err)
		}
	}()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "run started"})
}
