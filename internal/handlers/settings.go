package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/settings"
)

// SettingsHandler persists operating modes and the restaurant table layout.
type SettingsHandler struct {
	Store *settings.Store
	Bus   *events.Bus
}

func NewSettingsHandler(store *settings.Store, bus *events.Bus) *SettingsHandler {
	return &SettingsHandler{Store: store, Bus: bus}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Put)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Read())
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req settings.Update
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	st, err := h.Store.Write(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.Bus.Publish(events.Event{Entity: "settings", Action: events.ActionUpdated})
	httpx.JSON(w, http.StatusOK, st)
}
