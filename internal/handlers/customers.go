package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/catalog"
	"github.com/railpos/railpos/internal/httpx"
)

// CustomerHandler exposes the phone-keyed customer upsert and search.
type CustomerHandler struct {
	Customers *catalog.Customers
}

func NewCustomerHandler(customers *catalog.Customers) *CustomerHandler {
	return &CustomerHandler{Customers: customers}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Upsert)
	r.Get("/search", h.Search)
}

// Upsert resolves a customer by phone, creating or updating as needed, and
// returns the id the order flow should reference.
func (h *CustomerHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required", "phone": "required"})
		return
	}
	id, err := h.Customers.Upsert(req.Name, req.Phone, req.Address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]uint{"customer_id": id})
}

// Search matches customers by phone substring: GET /customers/search?q=...&limit=20
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	rows, err := h.Customers.SearchByPhone(q, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
