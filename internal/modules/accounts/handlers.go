package accounts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves scored-account queries against the latest scoring run.
type Handler struct {
	repo    *Repository
	runRepo *repositories.RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new accounts handler.
func NewHandler(repo *Repository, runRepo *repositories.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		runRepo: runRepo,
		log:     log.With().Str("handler", "accounts").Logger(),
	}
}

// RegisterRoutes registers all account routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{accountID}", h.HandleGet)
	})
}

// HandleList returns every scored account from the latest run, ordered by
// account ID.
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

	accounts, err := h.repo.ListByRun(run.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   run.ID,
		"run_at":   run.RunAt.Format(time.RFC3339),
		"count":    len(accounts),
		"accounts": accounts,
	})
}

// HandleGet returns one scored account from the latest run.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	run, err := h.runRepo.Latest()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "no scoring run available yet")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	account, err := h.repo.GetByRun(run.ID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "account not found in latest run")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  run.ID,
		"account": account,
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
