// Package httptransport assembles the HTTP router. Transport concerns stay
// here; business logic lives in the domain services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foicore/internal/platform/metrics"
	"foicore/internal/platform/middleware"
	publicbodyHandler "foicore/internal/publicbody/handler"
	statuteHandler "foicore/internal/statute/handler"
)

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(
	statutes *statuteHandler.Handler,
	publicBodies *publicbodyHandler.Handler,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	statutes.Register(r)
	publicBodies.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
