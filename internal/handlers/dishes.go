package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/models"
	"gorm.io/gorm"
)

// DishHandler manages menu dishes.
type DishHandler struct {
	DB  *gorm.DB
	Bus *events.Bus
}

func NewDishHandler(db *gorm.DB, bus *events.Bus) *DishHandler {
	return &DishHandler{DB: db, Bus: bus}
}

func (h *DishHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type dishRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID uint    `json:"category_id"`
}

func (req *dishRequest) validate() map[string]string {
	problems := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		problems["name"] = "required"
	}
	if req.Price < 0 {
		problems["price"] = "must_not_be_negative"
	}
	if req.CategoryID == 0 {
		problems["category_id"] = "required"
	}
	return problems
}

// List returns all dishes, optionally filtered by ?category_id=.
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("id")
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, ok := idParam(v)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_category_id", nil)
			return
		}
		q = q.Where("category_id = ?", id)
	}
	var dishes []models.Dish
	if err := q.Find(&dishes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_dishes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, dishes)
}

func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", problems)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "category_not_found", nil)
		return
	}
	dish := models.Dish{Name: req.Name, Price: req.Price, CategoryID: req.CategoryID}
	if err := h.DB.Create(&dish).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_dish", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "dish", Action: events.ActionCreated, ID: strconv.FormatUint(uint64(dish.ID), 10)})
	httpx.JSON(w, http.StatusCreated, dish)
}

func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req dishRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", problems)
		return
	}
	res := h.DB.Model(&models.Dish{}).Where("id = ?", id).
		Updates(map[string]any{"name": req.Name, "price": req.Price, "category_id": req.CategoryID})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_dish", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "dish_not_found", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "dish", Action: events.ActionUpdated, ID: strconv.FormatUint(uint64(id), 10)})
	httpx.JSON(w, http.StatusOK, models.Dish{ID: id, Name: req.Name, Price: req.Price, CategoryID: req.CategoryID})
}

func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Delete(&models.Dish{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_dish", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "dish", Action: events.ActionDeleted, ID: strconv.FormatUint(uint64(id), 10)})
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
