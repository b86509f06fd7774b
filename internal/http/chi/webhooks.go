package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
	"github.com/moverly/leadgate/webhook/verify"
)

/* HTTP layer DTOs for the gateway API
 * Separate from domain entities to avoid leaking internal structure
 */

// webhookResponse represents the API response for an accepted webhook
type webhookResponse struct {
	CallID   string `json:"call_id"`
	Provider string `json:"provider"`
}

// failedWebhookResponse represents a failure record in the API
type failedWebhookResponse struct {
	ID        string          `json:"id"`
	Provider  string          `json:"provider"`
	Reason    string          `json:"reason"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Request   json.RawMessage `json:"request"`
	Config    json.RawMessage `json:"config"`
}

// replayResponse represents the API response for a replayed webhook
type replayResponse struct {
	CallID string `json:"call_id"`
}

// postWebhook handles POST /v1/webhooks/:provider
func postWebhook(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := provider.New(chi.URLParam(r, "provider"))
		if err := p.Validate(); err != nil {
			http.Error(w, "unknown provider", http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		headers := make(map[string]string)
		for key, values := range r.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		delivery := webhook.Delivery{
			ID:         uuid.New().String(),
			Provider:   p,
			Method:     r.Method,
			URL:        r.URL.String(),
			RemoteAddr: r.RemoteAddr,
			Headers:    headers,
			Body:       body,
			ReceivedAt: time.Now().UTC(),
		}

		receipt, err := webhookService.Receive(r.Context(), delivery)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		switch receipt.Outcome {
		case verify.Valid:
			// fall through to the 202 below
		case verify.InvalidSignature:
			http.Error(w, "signature validation failed", http.StatusUnauthorized)
			return
		case verify.MalformedPayload:
			http.Error(w, "malformed payload", http.StatusBadRequest)
			return
		default:
			http.Error(w, "provider not configured", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		response := webhookResponse{
			CallID:   receipt.CallID,
			Provider: p.String(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getFailedWebhooks handles GET /v1/failed-webhooks
func getFailedWebhooks(webhookService webhook.UseCase, defaultLimit int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			if parsed < limit {
				limit = parsed
			}
		}

		failed, err := webhookService.ListFailed(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]failedWebhookResponse, 0, len(failed))
		for _, f := range failed {
			responses = append(responses, failedWebhookResponse{
				ID:        f.ID,
				Provider:  f.Provider.String(),
				Reason:    f.Reason,
				Status:    f.Status.String(),
				CreatedAt: f.CreatedAt,
				Request:   json.RawMessage(f.Request),
				Config:    json.RawMessage(f.Config),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// retryFailedWebhook handles POST /v1/failed-webhooks/:id/retry
func retryFailedWebhook(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		callID, err := webhookService.Replay(r.Context(), id)
		if err != nil {
			if errors.Is(err, webhook.ErrNotFound) {
				http.Error(w, "failed webhook not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(replayResponse{CallID: callID}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
