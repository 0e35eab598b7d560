package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bekzodm/sponsorhunt/internal/runner"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

// Server exposes a small operational surface: the persisted record set,
// the latest match results, pipeline counters, and a manual run trigger.
type Server struct {
	router  *chi.Mux
	records store.RecordStore
	runner  *runner.Runner
}

func NewServer(records store.RecordStore, r *runner.Runner) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		records: records,
		runner:  r,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/jobs", s.handleListJobs)
	s.router.Get("/matches", s.handleListMatches)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/runs", s.handleTriggerRun)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
