package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/moverly/leadgate/webhook"
)

// Handlers sets up the gateway API routes
func Handlers(ctx context.Context, webhookService webhook.UseCase, failedListLimit int, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("leadgate-api", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Inbound provider webhooks
		r.Post("/webhooks/{provider}", postWebhook(webhookService).ServeHTTP)

		// Failed webhook inspection and manual replay
		r.Get("/failed-webhooks", getFailedWebhooks(webhookService, failedListLimit).ServeHTTP)
		r.Post("/failed-webhooks/{id}/retry", retryFailedWebhook(webhookService).ServeHTTP)
	})

	return r
}
