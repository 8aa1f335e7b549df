package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = err
	}
}

// JSONError writes a machine-readable error body {"error": code, "details": ...}.
// The UI pattern-matches on code to pick user-facing copy.
func JSONError(w http.ResponseWriter, status int, code string, details map[string]string) {
	body := map[string]any{"error": code}
	if len(details) > 0 {
		body["details"] = details
	}
	JSON(w, status, body)
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
