package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/railpos/railpos/internal/catalog"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/handlers"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/orders"
	"github.com/railpos/railpos/internal/reports"
	"github.com/railpos/railpos/internal/settings"
	"github.com/railpos/railpos/internal/shift"
	"github.com/railpos/railpos/internal/ws"
	"gorm.io/gorm"
)

// Deps collects everything the router wires together.
type Deps struct {
	CatalogDB *gorm.DB
	Shifts    *shift.Manager
	Bus       *events.Bus
	Hub       *ws.Hub
	Settings  *settings.Store
}

// New constructs the root handler with every UI command routed.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The desktop shell's renderer runs on a dev-server origin during
	// development; in production everything is same-origin localhost.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	customers := catalog.NewCustomers(d.CatalogDB, d.Bus)
	orderSvc := orders.NewService(d.Shifts, d.Bus)
	reportSvc := reports.NewService(d.Shifts, d.CatalogDB, customers)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.CatalogDB.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, w, r)
	})

	r.Route("/categories", handlers.NewCategoryHandler(d.CatalogDB, d.Bus).RegisterRoutes)
	r.Route("/dishes", handlers.NewDishHandler(d.CatalogDB, d.Bus).RegisterRoutes)
	r.Route("/customers", handlers.NewCustomerHandler(customers).RegisterRoutes)
	r.Route("/orders", handlers.NewOrderHandler(orderSvc, reportSvc).RegisterRoutes)
	r.Route("/shift", handlers.NewShiftHandler(d.Shifts, d.Bus).RegisterRoutes)
	r.Route("/reports", handlers.NewReportsHandler(reportSvc).RegisterRoutes)
	r.Route("/tables", handlers.NewTableHandler(orderSvc).RegisterRoutes)
	r.Route("/settings", handlers.NewSettingsHandler(d.Settings, d.Bus).RegisterRoutes)

	return r
}
