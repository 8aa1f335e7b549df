package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/reports"
)

// ReportsHandler serves the read-only daily aggregates.
type ReportsHandler struct {
	Svc *reports.Service
}

func NewReportsHandler(svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{Svc: svc}
}

func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/today", h.TodayOrders)
	r.Get("/totals/today", h.Totals)
	r.Get("/revenue/today", h.Revenue)
}

func (h *ReportsHandler) TodayOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.TodayOrders()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *ReportsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Svc.Totals()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *ReportsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.Svc.RevenueBreakdown()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, breakdown)
}
