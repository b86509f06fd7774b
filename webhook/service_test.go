package webhook_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
	"github.com/moverly/leadgate/webhook/mocks"
	"github.com/moverly/leadgate/webhook/verify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProviders(t *testing.T) *provider.Loader {
	t.Helper()
	loader := provider.NewLoader()
	err := loader.Add(&provider.Config{
		Provider:       provider.MoveMatch,
		SigningSecret:  "mm-secret",
		SignatureField: "signature",
	})
	require.NoError(t, err)
	return loader
}

func signedMoveMatchBody(t *testing.T, timestamp, token string) []byte {
	t.Helper()
	mac := hmac.New(sha256.New, []byte("mm-secret"))
	mac.Write([]byte(timestamp + token))

	body, err := json.Marshal(map[string]string{
		"timestamp": timestamp,
		"token":     token,
		"signature": hex.EncodeToString(mac.Sum(nil)),
	})
	require.NoError(t, err)
	return body
}

func moveMatchDelivery(body []byte) webhook.Delivery {
	return webhook.Delivery{
		ID:         "delivery-1",
		Provider:   provider.MoveMatch,
		Method:     "POST",
		URL:        "/v1/webhooks/movematch",
		RemoteAddr: "203.0.113.9:4431",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
		ReceivedAt: time.Now().UTC(),
	}
}

func TestReceive(t *testing.T) {
	ctx := context.Background()

	t.Run("success - valid signature is enqueued", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		d := moveMatchDelivery(signedMoveMatchBody(t, "1700000000", "abc"))

		queue.On("Enqueue", ctx, webhook.MatchJob(func(job webhook.Job) bool {
			return job.Provider == provider.MoveMatch &&
				job.CallID != "" &&
				string(job.Delivery.Body) == string(d.Body)
		})).Return(nil)

		receipt, err := service.Receive(ctx, d)

		require.NoError(t, err)
		assert.True(t, receipt.Valid())
		assert.NotEmpty(t, receipt.CallID)
		queue.AssertExpectations(t)
		failures.AssertNotCalled(t, "Store")
	})

	t.Run("invalid signature - failure record created exactly once", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		body, err := json.Marshal(map[string]string{
			"timestamp": "1700000000",
			"token":     "abc",
			"signature": "0000000000000000000000000000000000000000000000000000000000000000",
		})
		require.NoError(t, err)
		d := moveMatchDelivery(body)

		failures.On("Store", ctx, webhook.MatchFailedWebhook(func(f webhook.FailedWebhook) bool {
			return f.Provider == provider.MoveMatch &&
				f.Reason == webhook.ReasonSignatureValidationFailed &&
				f.Status == webhook.Pending
		})).Return("failed-1", nil).Once()

		receipt, err := service.Receive(ctx, d)

		require.NoError(t, err)
		assert.False(t, receipt.Valid())
		assert.Equal(t, verify.InvalidSignature, receipt.Outcome)
		assert.Empty(t, receipt.CallID)
		failures.AssertNumberOfCalls(t, "Store", 1)
		queue.AssertNotCalled(t, "Enqueue")
	})

	t.Run("idempotence - same delivery twice yields same result, one record per call", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		body, err := json.Marshal(map[string]string{
			"timestamp": "1700000000",
			"token":     "abc",
			"signature": "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		})
		require.NoError(t, err)
		d := moveMatchDelivery(body)

		failures.On("Store", ctx, mock.Anything).Return("failed-1", nil).Twice()

		first, err := service.Receive(ctx, d)
		require.NoError(t, err)
		second, err := service.Receive(ctx, d)
		require.NoError(t, err)

		assert.Equal(t, first.Outcome, second.Outcome)
		failures.AssertNumberOfCalls(t, "Store", 2)
	})

	t.Run("failure-path isolation - storage error never propagates", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		body, err := json.Marshal(map[string]string{
			"timestamp": "1700000000",
			"token":     "abc",
			"signature": "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		})
		require.NoError(t, err)

		failures.On("Store", ctx, mock.Anything).Return("", errors.New("storage unavailable"))

		receipt, err := service.Receive(ctx, moveMatchDelivery(body))

		require.NoError(t, err, "recorder failure must not cascade into the caller")
		assert.Equal(t, verify.InvalidSignature, receipt.Outcome)
	})

	t.Run("malformed payload - fails closed with failure record", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		failures.On("Store", ctx, mock.Anything).Return("failed-2", nil).Once()

		receipt, err := service.Receive(ctx, moveMatchDelivery([]byte("not json at all")))

		require.NoError(t, err)
		assert.Equal(t, verify.MalformedPayload, receipt.Outcome)
		queue.AssertNotCalled(t, "Enqueue")
	})

	t.Run("unconfigured provider - no computation attempted", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		failures.On("Store", ctx, webhook.MatchFailedWebhook(func(f webhook.FailedWebhook) bool {
			return f.Provider == provider.LeadPoint
		})).Return("failed-3", nil).Once()

		d := moveMatchDelivery([]byte(`{}`))
		d.Provider = provider.LeadPoint

		receipt, err := service.Receive(ctx, d)

		require.NoError(t, err)
		assert.Equal(t, verify.UnknownProvider, receipt.Outcome)
		queue.AssertNotCalled(t, "Enqueue")
	})

	t.Run("enqueue failure surfaces to caller", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		queue.On("Enqueue", ctx, mock.Anything).Return(errors.New("stream down"))

		_, err := service.Receive(ctx, moveMatchDelivery(signedMoveMatchBody(t, "1700000000", "abc")))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "enqueueing job")
	})
}

func TestReceive_FailureRecordRedactsSecret(t *testing.T) {
	ctx := context.Background()
	failures := mocks.NewFailureRepository(t)
	queue := mocks.NewQueue(t)
	service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

	body, err := json.Marshal(map[string]string{
		"timestamp": "1700000000",
		"token":     "abc",
		"signature": "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
	})
	require.NoError(t, err)

	failures.On("Store", ctx, webhook.MatchFailedWebhook(func(f webhook.FailedWebhook) bool {
		var snap provider.Snapshot
		if err := json.Unmarshal(f.Config, &snap); err != nil {
			return false
		}
		return snap.SigningSecret == "mm-s..." && snap.Provider == "movematch"
	})).Return("failed-1", nil).Once()

	_, err = service.Receive(ctx, moveMatchDelivery(body))
	require.NoError(t, err)
	failures.AssertExpectations(t)
}

func TestListFailed(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		records := []webhook.FailedWebhook{
			{ID: "failed-1", Provider: provider.MoveMatch, Reason: webhook.ReasonSignatureValidationFailed},
		}
		failures.On("List", ctx, 50).Return(records, nil)

		got, err := service.ListFailed(ctx, 50)

		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("repository error", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		failures.On("List", ctx, 50).Return(nil, errors.New("db closed"))

		_, err := service.ListFailed(ctx, 50)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing failed webhooks")
	})
}

func TestReplay(t *testing.T) {
	ctx := context.Background()

	t.Run("success - re-enqueues and marks retried", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		d := moveMatchDelivery([]byte(`{"timestamp":"1700000000"}`))
		failed, err := webhook.NewFailedWebhook(d, nil)
		require.NoError(t, err)

		failures.On("Get", ctx, failed.ID).Return(failed, nil)
		queue.On("Enqueue", ctx, webhook.MatchJob(func(job webhook.Job) bool {
			return job.Provider == provider.MoveMatch &&
				string(job.Delivery.Body) == string(d.Body)
		})).Return(nil)
		failures.On("UpdateStatus", ctx, failed.ID, webhook.Retried).Return(nil)

		callID, err := service.Replay(ctx, failed.ID)

		require.NoError(t, err)
		assert.NotEmpty(t, callID)
		queue.AssertExpectations(t)
		failures.AssertExpectations(t)
	})

	t.Run("error - record not found", func(t *testing.T) {
		failures := mocks.NewFailureRepository(t)
		queue := mocks.NewQueue(t)
		service := webhook.NewService(testProviders(t), failures, queue, zerolog.Nop())

		failures.On("Get", ctx, "missing").Return(webhook.FailedWebhook{}, errors.New("not found"))

		_, err := service.Replay(ctx, "missing")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting failed webhook")
	})
}
