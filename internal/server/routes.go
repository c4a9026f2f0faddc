package server

import (
	"net/http"

	"motiongen/internal/handler"
	"motiongen/internal/middleware"
)

func NewMux(
	motionHandler *handler.MotionHandler,
	healthHandler *handler.HealthHandler,
	metricsHandler http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handler.HandleRoot)
	mux.HandleFunc("/api/generate-motion", motionHandler.HandleGenerateMotion)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.Handle("/metrics", metricsHandler)

	return middleware.CORS(mux)
}
