package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencodex/codex-web/backend/internal/model/settings"
	"github.com/opencodex/codex-web/backend/pkg/utils"
)

// Handler serves the user configuration record.
type Handler struct {
	store settings.Store
}

// New creates the settings handler.
func New(store settings.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes wires the config routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/config", h.handleGet)
	r.Post("/config", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.Get())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var partial settings.Partial
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.store.Update(partial)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}
