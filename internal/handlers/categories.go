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

// CategoryHandler manages the menu's category list.
type CategoryHandler struct {
	DB  *gorm.DB
	Bus *events.Bus
}

func NewCategoryHandler(db *gorm.DB, bus *events.Bus) *CategoryHandler {
	return &CategoryHandler{DB: db, Bus: bus}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var cats []models.Category
	if err := h.DB.Order("id").Find(&cats).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	cat := models.Category{Name: req.Name}
	if err := h.DB.Create(&cat).Error; err != nil {
		httpx.JSONError(w, http.StatusConflict, "failed_to_create_category", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "category", Action: events.ActionCreated, ID: strconv.FormatUint(uint64(cat.ID), 10)})
	httpx.JSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	res := h.DB.Model(&models.Category{}).Where("id = ?", id).Update("name", req.Name)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusConflict, "failed_to_update_category", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "category", Action: events.ActionUpdated, ID: strconv.FormatUint(uint64(id), 10)})
	httpx.JSON(w, http.StatusOK, models.Category{ID: id, Name: req.Name})
}

// Delete removes a category and every dish in it. Dropping the dishes is a
// deliberate simplification; there is no archival.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.Dish{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_category", nil)
		return
	}
	h.Bus.Publish(events.Event{Entity: "category", Action: events.ActionDeleted, ID: strconv.FormatUint(uint64(id), 10)})
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
