package feed

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler triggers feed refreshes over HTTP.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new feed handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "feed").Logger(),
	}
}

// RegisterRoutes registers feed routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/feed/refresh", h.HandleRefresh)
}

// HandleRefresh regenerates the feed and runs a full scoring pass.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Refresh(time.Now().UTC())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run": run,
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
