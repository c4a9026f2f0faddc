// Package handler exposes the service's HTTP boundary: the single
// motion-generation operation plus health and info endpoints.
package handler

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleRoot serves basic service info.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Välkommen till Motion Generator API",
		"endpoints": map[string]string{
			"generate_motion": "/api/generate-motion",
			"health":          "/health",
			"metrics":         "/metrics",
		},
	})
}
