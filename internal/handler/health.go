package handler

import (
	"context"
	"net/http"
	"time"

	"motiongen/internal/llm"
)

// KoladaProber is the probe slice of the Kolada client.
type KoladaProber interface {
	MunicipalityData(ctx context.Context, kpiID, municipalityID string, year int) (float64, error)
}

type HealthHandler struct {
	kolada KoladaProber
	gen    llm.TextClient
}

func NewHealthHandler(kolada KoladaProber, gen llm.TextClient) *HealthHandler {
	return &HealthHandler{kolada: kolada, gen: gen}
}

// HandleHealth probes both upstreams with short deadlines. The endpoint
// itself always answers 200; per-upstream status is in the body.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := map[string]string{
		"api":        "healthy",
		"kolada":     "unknown",
		"ai_service": "unknown",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Previous year: current-year data is usually not published yet.
	if _, err := h.kolada.MunicipalityData(ctx, "N01900", "1715", time.Now().Year()-1); err != nil {
		status["kolada"] = "error"
	} else {
		status["kolada"] = "ok"
	}

	if text, err := h.gen.Complete(ctx, "Du är en testassistent. Svara 'OK'.", "test"); err != nil || text == "" {
		status["ai_service"] = "error"
	} else {
		status["ai_service"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
