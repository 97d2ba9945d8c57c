package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"verireg/internal/admin"
	jwttoken "verireg/internal/jwt_token"
	"verireg/internal/platform/config"
	"verireg/internal/platform/metrics"
	"verireg/internal/platform/middleware"
	"verireg/internal/registry/handler"
	"verireg/pkg/platform/httputil"
	"verireg/pkg/platform/middleware/auth"
	"verireg/pkg/platform/middleware/requesttime"
)

func newRouter(cfg config.Server, a *app, in *infra, m *metrics.Metrics, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log, m))

	requireAuth := auth.RequireAuth(jwttoken.NewJWTServiceAdapter(a.jwt), a.trl, log)
	handler.New(a.registry, log, requireAuth).Register(r)
	admin.New(a.trl, a.auditLog, cfg.AdminToken, log).Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := in.Healthy(req.Context()); err != nil {
			log.WarnContext(req.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsAddr == "" {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}
	return r
}
