package webhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook/verify"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// Receipt is the outcome of receiving a delivery. CallID is only set
// when the delivery passed verification and was enqueued.
type Receipt struct {
	CallID  string
	Outcome verify.Outcome
}

// Valid reports whether the delivery was accepted
func (r Receipt) Valid() bool {
	return r.Outcome == verify.Valid
}

// UseCase defines the business operations for webhook ingestion
type UseCase interface {
	Receive(ctx context.Context, d Delivery) (Receipt, error)
	ListFailed(ctx context.Context, limit int) ([]FailedWebhook, error)
	Replay(ctx context.Context, id string) (string, error)
}

type Service struct {
	Providers *provider.Loader
	Failures  FailureRepository
	Queue     Queue
	logger    zerolog.Logger
}

// NewService creates a new webhook service with dependency injection
func NewService(providers *provider.Loader, failures FailureRepository, queue Queue, logger zerolog.Logger) *Service {
	return &Service{
		Providers: providers,
		Failures:  failures,
		Queue:     queue,
		logger:    logger,
	}
}

/* Receive verifies a delivery's signature and either enqueues it for
 * asynchronous processing or records it for manual inspection.
 *
 * Verification is synchronous and must stay fast: the only I/O on the
 * path is the enqueue on success or the single failure-record write on
 * rejection. Verification is never retried; a rejected delivery is
 * terminal and only recoverable through Replay.
 */
func (s *Service) Receive(ctx context.Context, d Delivery) (Receipt, error) {
	cfg, err := s.Providers.Get(d.Provider)
	if err != nil {
		s.logger.Warn().
			Str("provider", d.Provider.String()).
			Str("remote_addr", d.RemoteAddr).
			Msg("webhook from unconfigured provider rejected")
		s.recordFailure(ctx, d, nil)
		return Receipt{Outcome: verify.UnknownProvider}, nil
	}

	res := verify.Verify(cfg, d.Body, d.HTTPHeader())
	if !res.Valid() {
		event := s.logger.Warn().
			Str("provider", d.Provider.String()).
			Str("outcome", res.Outcome.String()).
			Str("remote_addr", d.RemoteAddr).
			Str("secret_prefix", cfg.RedactedSecret())
		if res.Err != nil {
			event = event.Err(res.Err)
		}
		event.Msg("webhook signature verification failed")

		s.recordFailure(ctx, d, cfg)
		return Receipt{Outcome: res.Outcome}, nil
	}

	callID := uuid.New().String()
	job := Job{
		CallID:   callID,
		Provider: d.Provider,
		Delivery: d,
	}
	if err := s.Queue.Enqueue(ctx, job); err != nil {
		return Receipt{}, fmt.Errorf("enqueueing job: %w", err)
	}

	s.logger.Info().
		Str("provider", d.Provider.String()).
		Str("call_id", callID).
		Msg("webhook verified and enqueued")

	return Receipt{CallID: callID, Outcome: verify.Valid}, nil
}

/* recordFailure persists the rejected delivery best effort. A storage
 * failure is logged at error level and swallowed: losing audit data
 * must never cascade into the caller's failure path.
 */
func (s *Service) recordFailure(ctx context.Context, d Delivery, cfg *provider.Config) {
	failed, err := NewFailedWebhook(d, cfg)
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", d.Provider.String()).
			Msg("building failed webhook record")
		return
	}

	if _, err := s.Failures.Store(ctx, failed); err != nil {
		s.logger.Error().Err(err).
			Str("provider", d.Provider.String()).
			Str("failed_webhook_id", failed.ID).
			Msg("storing failed webhook record")
	}
}

// ListFailed returns the most recent failed webhook records
func (s *Service) ListFailed(ctx context.Context, limit int) ([]FailedWebhook, error) {
	failed, err := s.Failures.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing failed webhooks: %w", err)
	}
	return failed, nil
}

/* Replay re-enqueues a previously rejected delivery and marks its
 * record as retried. Replay deliberately bypasses verification: an
 * operator inspecting the record has already decided the delivery is
 * trustworthy despite its signature.
 */
func (s *Service) Replay(ctx context.Context, id string) (string, error) {
	failed, err := s.Failures.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("getting failed webhook: %w", err)
	}

	snap, err := failed.RequestSnapshot()
	if err != nil {
		return "", fmt.Errorf("reading request snapshot: %w", err)
	}

	callID := uuid.New().String()
	job := Job{
		CallID:   callID,
		Provider: failed.Provider,
		Delivery: Delivery{
			ID:         failed.ID,
			Provider:   failed.Provider,
			Method:     snap.Method,
			URL:        snap.URL,
			RemoteAddr: snap.RemoteAddr,
			Headers:    snap.Headers,
			Body:       []byte(snap.Body),
			ReceivedAt: snap.ReceivedAt,
		},
	}
	if err := s.Queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("enqueueing replayed job: %w", err)
	}

	if err := s.Failures.UpdateStatus(ctx, id, Retried); err != nil {
		return "", fmt.Errorf("marking failed webhook retried: %w", err)
	}

	s.logger.Info().
		Str("failed_webhook_id", id).
		Str("call_id", callID).
		Str("provider", failed.Provider.String()).
		Msg("failed webhook replayed")

	return callID, nil
}
