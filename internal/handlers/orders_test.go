package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/catalog"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/models"
	"github.com/railpos/railpos/internal/orders"
	"github.com/railpos/railpos/internal/reports"
	"github.com/railpos/railpos/internal/shift"
)

func orderRouter(t *testing.T) (chi.Router, *shift.Manager) {
	t.Helper()
	db := setupCatalogDB(t)
	bus := events.NewBus()
	mgr := shift.NewManager(t.TempDir())
	svc := orders.NewService(mgr, bus)
	rpt := reports.NewService(mgr, db, catalog.NewCustomers(db, bus))

	r := chi.NewRouter()
	r.Route("/orders", NewOrderHandler(svc, rpt).RegisterRoutes)
	return r, mgr
}

func TestCreateOrderWithoutShiftConflicts(t *testing.T) {
	r, _ := orderRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(
		`{"payment_method":"cash","items":[{"dish_id":1,"quantity":1,"price":2.50}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "no_active_shift" {
		t.Fatalf("error = %s", body.Error)
	}
}

func TestCreateOrderDuringShift(t *testing.T) {
	r, mgr := orderRouter(t)
	if _, err := mgr.Start(); err != nil {
		t.Fatalf("start shift: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(
		`{"payment_method":"cash","items":[{"dish_id":1,"quantity":3,"price":2.50}]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Status != models.StatusPaid {
		t.Fatalf("status = %s", order.Status)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items = %+v", order.Items)
	}
}

func TestCreateOrderValidationErrors(t *testing.T) {
	r, mgr := orderRouter(t)
	if _, err := mgr.Start(); err != nil {
		t.Fatalf("start shift: %v", err)
	}

	// Empty basket.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty items: expected 400 got %d", w.Code)
	}

	// Unknown fulfillment mode.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(
		`{"fulfillment":"drone","items":[{"dish_id":1,"quantity":1,"price":1}]}`)))
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("bad fulfillment: expected 400 got %d body=%s", w2.Code, w2.Body.String())
	}
}

func TestFinalizeMissingOrderIsSoftMiss(t *testing.T) {
	r, mgr := orderRouter(t)
	if _, err := mgr.Start(); err != nil {
		t.Fatalf("start shift: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/orders/42/payment", strings.NewReader(`{"payment_method":"card"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["paid"] {
		t.Fatal("expected paid=false for a missing order")
	}
}

func TestQuickSaleRequiresPaymentMethod(t *testing.T) {
	r, mgr := orderRouter(t)
	if _, err := mgr.Start(); err != nil {
		t.Fatalf("start shift: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/quick-sale", strings.NewReader(
		`{"items":[{"dish_id":1,"quantity":1,"price":5.99}]}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/orders/quick-sale", strings.NewReader(
		`{"payment_method":"cash","items":[{"dish_id":1,"quantity":1,"price":5.99}]}`)))
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w2.Code, w2.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w2.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Fulfillment != models.FulfillmentBar || order.Status != models.StatusPaid {
		t.Fatalf("order = %+v", order)
	}
}
