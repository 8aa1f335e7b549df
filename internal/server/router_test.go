package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/railpos/railpos/internal/db"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/models"
	"github.com/railpos/railpos/internal/settings"
	"github.com/railpos/railpos/internal/shift"
	"github.com/railpos/railpos/internal/ws"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.EnsureCatalogSchema(conn); err != nil {
		t.Fatalf("schema: %v", err)
	}
	bus := events.NewBus()
	return New(Deps{
		CatalogDB: conn,
		Shifts:    shift.NewManager(t.TempDir()),
		Bus:       bus,
		Hub:       ws.NewHub(),
		Settings:  settings.NewStore(t.TempDir()),
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	w := get(t, h, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestSeededMenuIsServed(t *testing.T) {
	h := newTestRouter(t)

	w := get(t, h, "/categories")
	var cats []models.Category
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 4 {
		t.Fatalf("expected 4 seeded categories, got %d", len(cats))
	}

	w2 := get(t, h, "/dishes")
	var dishes []models.Dish
	if err := json.Unmarshal(w2.Body.Bytes(), &dishes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dishes) != 4 {
		t.Fatalf("expected 4 seeded dishes, got %d", len(dishes))
	}
}

func TestOrderCommandsGateOnShift(t *testing.T) {
	h := newTestRouter(t)

	// No shift open yet: order commands conflict, shift query reports none.
	w := post(t, h, "/orders", `{"payment_method":"cash","items":[{"dish_id":1,"quantity":1,"price":5.99}]}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	w2 := get(t, h, "/shift/current")
	var current struct {
		Shift *shift.Info `json:"shift"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if current.Shift != nil {
		t.Fatalf("shift = %+v, want none", current.Shift)
	}

	if w3 := post(t, h, "/shift/start", ""); w3.Code != http.StatusCreated {
		t.Fatalf("start shift: expected 201 got %d body=%s", w3.Code, w3.Body.String())
	}

	w4 := post(t, h, "/orders", `{"payment_method":"cash","items":[{"dish_id":1,"quantity":1,"price":5.99}]}`)
	if w4.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w4.Code, w4.Body.String())
	}

	if w5 := post(t, h, "/shift/close", ""); w5.Code != http.StatusOK {
		t.Fatalf("close shift: expected 200 got %d body=%s", w5.Code, w5.Body.String())
	}
	w6 := post(t, h, "/orders", `{"payment_method":"cash","items":[{"dish_id":1,"quantity":1,"price":5.99}]}`)
	if w6.Code != http.StatusConflict {
		t.Fatalf("after close: expected 409 got %d", w6.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(
		`{"enabledStyles":["TAKEAWAY","RESTAURANT"],"activeStyle":"RESTAURANT"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w2 := get(t, h, "/settings")
	var st settings.Settings
	if err := json.Unmarshal(w2.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.ActiveStyle != settings.StyleRestaurant {
		t.Fatalf("active = %s", st.ActiveStyle)
	}
}
