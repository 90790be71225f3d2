// Package api exposes the scoring pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/engine"
	"github.com/ashburn-young/cokedemo/internal/modules/ingest"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	"github.com/ashburn-young/cokedemo/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RunRequest is an ad-hoc scoring request: caller-supplied CRM records plus
// an optional reference time.
type RunRequest struct {
	AsOf          time.Time               `json:"as_of,omitempty"`
	Accounts      []ingest.RawAccount     `json:"accounts"`
	Opportunities []ingest.RawOpportunity `json:"opportunities"`
}

// Handler runs scoring passes over caller-supplied batches.
type Handler struct {
	runs    *services.RunService
	runRepo *repositories.RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new scoring handler.
func NewHandler(runs *services.RunService, runRepo *repositories.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		runs:    runs,
		runRepo: runRepo,
		log:     log.With().Str("handler", "scoring").Logger(),
	}
}

// RegisterRoutes registers scoring routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/run", h.HandleRun)
		r.Get("/runs", h.HandleListRuns)
	})
}

// HandleRun scores a caller-supplied batch and persists it as a run.
// Rejected records come back alongside the scored entities; only a
// malformed request or an infrastructure failure is an HTTP error.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	run, result, err := h.runs.Execute(engine.Batch{
		AsOf:          req.AsOf,
		Accounts:      req.Accounts,
		Opportunities: req.Opportunities,
	}, "api")
	if err != nil {
		// A scorer domain violation after validation is a fatal defect,
		// not a client error.
		if errors.Is(err, scoring.ErrPreconditionViolated) {
			h.log.Error().Err(err).Msg("Precondition violated after validation")
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":           run,
		"accounts":      result.Accounts,
		"opportunities": result.Opportunities,
		"insights":      result.Insights,
		"errors":        result.Errors,
	})
}

// HandleListRuns returns recent run headers, newest first.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runRepo.List(20)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
