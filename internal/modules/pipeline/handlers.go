package pipeline

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves opportunity rankings and pipeline forecasts from the latest
// scoring run.
type Handler struct {
	repo    *Repository
	runRepo *repositories.RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new pipeline handler.
func NewHandler(repo *Repository, runRepo *repositories.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		runRepo: runRepo,
		log:     log.With().Str("handler", "pipeline").Logger(),
	}
}

// RegisterRoutes registers opportunity and forecast routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/opportunities", h.HandleListOpportunities)
	r.Get("/pipeline/forecast", h.HandleForecast)
}

// HandleListOpportunities returns the latest run's opportunities in ranked
// order.
func (h *Handler) HandleListOpportunities(w http.ResponseWriter, r *http.Request) {
	run, opportunities, ok := h.latestRun(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        run.ID,
		"run_at":        run.RunAt.Format(time.RFC3339),
		"count":         len(opportunities),
		"opportunities": opportunities,
	})
}

// HandleForecast returns the probability-weighted pipeline forecast.
func (h *Handler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	run, opportunities, ok := h.latestRun(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   run.ID,
		"run_at":   run.RunAt.Format(time.RFC3339),
		"forecast": BuildForecast(opportunities),
	})
}

func (h *Handler) latestRun(w http.ResponseWriter) (*repositories.Run, []domain.ScoredOpportunity, bool) {
	run, err := h.runRepo.Latest()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "no scoring run available yet")
			return nil, nil, false
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}

	opportunities, err := h.repo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return run, opportunities, true
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
