package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/orders"
)

// TableHandler drives restaurant table service. Table ids come from the
// layout stored in settings; occupancy is derived from pending orders.
type TableHandler struct {
	Svc *orders.Service
}

func NewTableHandler(svc *orders.Service) *TableHandler {
	return &TableHandler{Svc: svc}
}

func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/occupancy", h.Occupancy)
	r.Post("/{tableID}/open", h.Open)
	r.Post("/{tableID}/close", h.Close)
}

func (h *TableHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	occupied, err := h.Svc.Occupancy()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string][]string{"occupied": occupied})
}

func (h *TableHandler) Open(w http.ResponseWriter, r *http.Request) {
	tableID := strings.TrimSpace(chi.URLParam(r, "tableID"))
	if tableID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_table_id", nil)
		return
	}
	order, err := h.Svc.OpenTable(tableID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *TableHandler) Close(w http.ResponseWriter, r *http.Request) {
	tableID := strings.TrimSpace(chi.URLParam(r, "tableID"))
	if tableID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_table_id", nil)
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.PaymentMethod == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"payment_method": "required"})
		return
	}
	order, err := h.Svc.CloseTable(tableID, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
