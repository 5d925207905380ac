package handler

import (
	"net/http"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/infra/observability"
	"github.com/tarjetero/tarjetero-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.CardsService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 💳 Tarjetas
		// =============================================
		r.Get("/cards", listCardsHandler(svc, logger))
		r.Post("/cards", createCardHandler(svc, logger))
		r.Get("/cards/{cardId}", getCardHandler(svc, logger))
		r.Put("/cards/{cardId}", updateCardHandler(svc, logger))
		r.Delete("/cards/{cardId}", deleteCardHandler(svc, logger))

		// =============================================
		// 2. 💰 Movimientos
		// =============================================
		r.Post("/cards/{cardId}/transactions", addTransactionHandler(svc, logger))
		r.Delete("/cards/{cardId}/transactions/{transactionId}", deleteTransactionHandler(svc, logger))

		// =============================================
		// 3. 📅 Meses sin intereses
		// =============================================
		r.Get("/cards/{cardId}/installments", listInstallmentsHandler(svc, logger))
		r.Post("/cards/{cardId}/installments/{installmentId}/payments", payInstallmentHandler(svc, logger))
		r.Delete("/cards/{cardId}/installments/{installmentId}", deleteInstallmentHandler(svc, logger))

		// =============================================
		// 4. 📊 Resúmenes
		// =============================================
		r.Get("/cards/{cardId}/summary", cardSummaryHandler(svc, logger))
		r.Get("/summary", portfolioSummaryHandler(svc, logger))
		r.Get("/metrics/engine", engineMetricsHandler(svc, logger))

		// =============================================
		// 5. 📦 Respaldo
		// =============================================
		r.Get("/export", exportHandler(svc, logger))
		r.Post("/import", importHandler(svc, logger))
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
