package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/seedtools/shopseed/internal/logging"
)

// handleHealth reports liveness, including database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		if err := s.pool.Ping(r.Context()); err != nil {
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStartRun triggers an asynchronous import run.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	runID, err := s.service.StartRun(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("import run started", "run_id", runID)
	respondJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// handleGetRun returns the report for a single run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	report, err := s.service.Report(runID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleLatestRun returns the most recent run's report.
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Latest()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, report)
}
