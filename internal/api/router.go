package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/api/handler"
	apimw "github.com/modhub/review-queue/internal/api/middleware"
	"github.com/modhub/review-queue/internal/ratelimiter"
	"github.com/modhub/review-queue/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.ModerationService,
	limiter *ratelimiter.ModeratorLimiters,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	qh := handler.NewQueueHandler(svc, limiter, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Every queue route acts on behalf of a moderator; the identity
		// header is mandatory here and nowhere else.
		r.Use(apimw.ModeratorIdentity)

		// Note: /stats must be registered before /{id} so chi does not
		// treat the literal string "stats" as an item ID.
		r.Get("/queue/stats", qh.Stats)
		r.Post("/queue", qh.Submit)
		r.Get("/queue", qh.List)
		r.Get("/queue/{id}", qh.GetByID)
		r.Put("/queue/{id}/edits", qh.ProposeEdit)
		r.Post("/queue/{id}/decision", qh.Decide)
	})

	return r
}
