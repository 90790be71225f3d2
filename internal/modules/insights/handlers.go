package insights

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves ranked insights from the latest scoring run.
type Handler struct {
	repo    *Repository
	runRepo *repositories.RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new insights handler.
func NewHandler(repo *Repository, runRepo *repositories.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		runRepo: runRepo,
		log:     log.With().Str("handler", "insights").Logger(),
	}
}

// RegisterRoutes registers insight routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/insights", h.HandleList)
}

// HandleList returns the latest run's insights in ranked order. Supports
// ?kind= and ?limit= filters; filtering preserves the ranked order.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	run, err := h.runRepo.Latest()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "no scoring run available yet")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	insights, err := h.repo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		filtered := insights[:0:0]
		for _, ins := range insights {
			if ins.Kind == domain.InsightKind(kind) {
				filtered = append(filtered, ins)
			}
		}
		insights = filtered
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(insights) {
			insights = insights[:limit]
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   run.ID,
		"run_at":   run.RunAt.Format(time.RFC3339),
		"count":    len(insights),
		"insights": insights,
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
