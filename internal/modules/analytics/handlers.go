package analytics

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/modules/accounts"
	"github.com/ashburn-young/cokedemo/internal/modules/insights"
	"github.com/ashburn-young/cokedemo/internal/modules/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves portfolio-level analytics over the latest scoring run.
type Handler struct {
	runRepo     *repositories.RunRepository
	accountRepo *accounts.Repository
	oppRepo     *pipeline.Repository
	insightRepo *insights.Repository
	log         zerolog.Logger
}

// NewHandler creates a new analytics handler.
func NewHandler(
	runRepo *repositories.RunRepository,
	accountRepo *accounts.Repository,
	oppRepo *pipeline.Repository,
	insightRepo *insights.Repository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		runRepo:     runRepo,
		accountRepo: accountRepo,
		oppRepo:     oppRepo,
		insightRepo: insightRepo,
		log:         log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes registers analytics routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics/summary", h.HandleSummary)
}

// HandleSummary returns the executive summary of the latest run.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	run, err := h.runRepo.Latest()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "no scoring run available yet")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	scoredAccounts, err := h.accountRepo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	scoredOpps, err := h.oppRepo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	runInsights, err := h.insightRepo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  run.ID,
		"run_at":  run.RunAt.Format(time.RFC3339),
		"summary": BuildSummary(scoredAccounts, scoredOpps, runInsights),
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
