package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tabletennis-scoreboard/internal/hub"
	"tabletennis-scoreboard/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/matches", CreateMatch(h, log))
	r.Get("/healthz", Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
