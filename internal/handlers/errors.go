package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/railpos/railpos/internal/httpx"
	"github.com/railpos/railpos/internal/orders"
	"github.com/railpos/railpos/internal/reports"
	"github.com/railpos/railpos/internal/shift"
)

// writeServiceError maps service-layer sentinels to stable error codes the UI
// pattern-matches on; anything unanticipated becomes a logged internal_error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shift.ErrNoActiveShift):
		httpx.JSONError(w, http.StatusConflict, "no_active_shift", nil)
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, reports.ErrOrderNotFound):
		httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
	case errors.Is(err, orders.ErrEmptyItems):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"items": "required"})
	case errors.Is(err, orders.ErrInvalidQuantity):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"items": "invalid_quantity"})
	case errors.Is(err, orders.ErrInvalidFulfillment):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"fulfillment": "invalid"})
	case errors.Is(err, orders.ErrTableOccupied):
		httpx.JSONError(w, http.StatusConflict, "table_occupied", nil)
	case errors.Is(err, orders.ErrTableNotOpen):
		httpx.JSONError(w, http.StatusNotFound, "table_not_open", nil)
	default:
		log.Printf("[HTTP] internal error: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// idParam parses a positive integer path or query value.
func idParam(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
