package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/orders"
	"github.com/railpos/railpos/internal/reports"
)

// OrderHandler exposes the order lifecycle: create, edit items, finalize
// payment, bar quick sale, plus detail reads.
type OrderHandler struct {
	Svc     *orders.Service
	Reports *reports.Service
}

func NewOrderHandler(svc *orders.Service, rpt *reports.Service) *OrderHandler {
	return &OrderHandler{Svc: svc, Reports: rpt}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Detail)
	r.Put("/{id}/items", h.UpdateItems)
	r.Post("/{id}/payment", h.Finalize)
	r.Post("/quick-sale", h.QuickSale)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.Svc.Create(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	detail, err := h.Reports.OrderDetail(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *OrderHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Items []orders.ItemInput `json:"items"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Svc.UpdateItems(id, req.Items); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
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
	// A miss is a soft failure: report it, don't 404 the command.
	affected, err := h.Svc.FinalizePayment(id, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"paid": affected})
}

func (h *OrderHandler) QuickSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items         []orders.ItemInput `json:"items"`
		PaymentMethod string             `json:"payment_method"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.PaymentMethod == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"payment_method": "required"})
		return
	}
	order, err := h.Svc.QuickSale(req.Items, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}
