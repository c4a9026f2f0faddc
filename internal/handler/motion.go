package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"motiongen/internal/metrics"
	"motiongen/internal/motion"
	"motiongen/internal/statistics"
	"motiongen/internal/trace"
)

type MotionHandler struct {
	pipeline *motion.Pipeline
	trace    *trace.Logger
}

func NewMotionHandler(p *motion.Pipeline, tr *trace.Logger) *MotionHandler {
	return &MotionHandler{pipeline: p, trace: tr}
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type statEntry struct {
	Type         string   `json:"type"`
	Year         int      `json:"year"`
	Municipality string   `json:"municipality"`
	Value        *float64 `json:"value"`
}

func (h *MotionHandler) HandleGenerateMotion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req motion.MotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": errorBody{Kind: string(motion.KindInvalidRequest), Message: "invalid json body"},
		})
		return
	}

	requestID := uuid.NewString()
	ctx := trace.WithRequestID(r.Context(), requestID)
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	res, err := h.pipeline.Generate(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		kind, ok := motion.KindOf(err)
		if !ok {
			kind = motion.KindGenerationUnavailable
		}
		metrics.RequestsTotal.WithLabelValues(string(kind)).Inc()
		metrics.RequestDuration.WithLabelValues("error").Observe(elapsed)
		var mErr *motion.Error
		msg := err.Error()
		if errors.As(err, &mErr) {
			msg = mErr.Message
		}
		writeJSON(w, statusForKind(kind), map[string]any{
			"error": errorBody{Kind: string(kind), Message: msg},
		})
		return
	}
	metrics.RequestsTotal.WithLabelValues("ok").Inc()
	metrics.RequestDuration.WithLabelValues("ok").Observe(elapsed)

	writeJSON(w, http.StatusOK, map[string]any{
		"motion": res.FormattedText,
		"metadata": map[string]any{
			"topic":        req.Topic,
			"municipality": res.Municipality,
			"generated":    "success",
			"ai_model":     res.Model,
			"statistics":   statEntries(res),
		},
	})
}

// statusForKind maps the error taxonomy onto HTTP statuses; the kind and
// message themselves pass through verbatim in the body.
func statusForKind(kind motion.Kind) int {
	switch kind {
	case motion.KindInvalidRequest:
		return http.StatusBadRequest
	case motion.KindGenerationRejected:
		return http.StatusUnprocessableEntity
	case motion.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case motion.KindGenerationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func statEntries(res motion.MotionResult) []statEntry {
	keys := make([]statistics.Key, 0, len(res.Statistics))
	for k := range res.Statistics {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return statistics.Rank(keys[i]) < statistics.Rank(keys[j])
	})
	out := make([]statEntry, 0, len(keys))
	for _, k := range keys {
		s := res.Statistics[k]
		if s.Value == nil {
			continue
		}
		out = append(out, statEntry{
			Type:         string(k),
			Year:         s.Year,
			Municipality: res.Municipality,
			Value:        s.Value,
		})
	}
	return out
}
