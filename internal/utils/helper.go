package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes the same failure envelope the handlers use.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]any{"success": false, "message": message})
}

// Coalesce returns the first non-blank value, or fallback.
func Coalesce(fallback string, values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}
