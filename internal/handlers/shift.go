package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/shift"
)

// ShiftHandler exposes the shift lifecycle.
type ShiftHandler struct {
	Shifts *shift.Manager
	Bus    *events.Bus
}

func NewShiftHandler(shifts *shift.Manager, bus *events.Bus) *ShiftHandler {
	return &ShiftHandler{Shifts: shifts, Bus: bus}
}

func (h *ShiftHandler) RegisterRoutes(r chi.Router) {
	r.Get("/current", h.Current)
	r.Post("/start", h.Start)
	r.Post("/close", h.Close)
}

func (h *ShiftHandler) Current(w http.ResponseWriter, r *http.Request) {
	info, ok := h.Shifts.Current()
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"shift": nil})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shift": info})
}

func (h *ShiftHandler) Start(w http.ResponseWriter, r *http.Request) {
	info, err := h.Shifts.Start()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.Bus.Publish(events.Event{Entity: "shift", Action: events.ActionCreated, ID: info.Date})
	httpx.JSON(w, http.StatusCreated, info)
}

func (h *ShiftHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.Shifts.Close(); err != nil {
		writeServiceError(w, err)
		return
	}
	h.Bus.Publish(events.Event{Entity: "shift", Action: events.ActionDeleted})
	httpx.JSON(w, http.StatusOK, map[string]bool{"closed": true})
}
