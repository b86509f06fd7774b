package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moverly/leadgate/provider"
)

// ReasonSignatureValidationFailed is the single failure reason recorded
// by the verification path.
const ReasonSignatureValidationFailed = "signature_validation_failed"

/* FailedWebhook is a persisted snapshot of a delivery that failed
 * signature verification, retained for diagnosis and manual replay.
 * Created exactly once per failed delivery, never mutated by the
 * verification path itself.
 */
type FailedWebhook struct {
	ID       string
	Provider provider.Provider
	Reason   string
	// Request and Config are JSON snapshots; the config snapshot always
	// carries a redacted secret.
	Request   []byte
	Config    []byte
	Status    Status
	CreatedAt time.Time
}

// NewFailedWebhook builds a failure record from a rejected delivery.
// A nil config means the provider was unknown; the config snapshot then
// only names the provider.
func NewFailedWebhook(d Delivery, cfg *provider.Config) (FailedWebhook, error) {
	request, err := json.Marshal(d.Snapshot())
	if err != nil {
		return FailedWebhook{}, fmt.Errorf("marshaling request snapshot: %w", err)
	}

	snap := provider.Snapshot{Provider: d.Provider.String()}
	if cfg != nil {
		snap = cfg.Redacted()
	}
	config, err := json.Marshal(snap)
	if err != nil {
		return FailedWebhook{}, fmt.Errorf("marshaling config snapshot: %w", err)
	}

	return FailedWebhook{
		ID:        uuid.New().String(),
		Provider:  d.Provider,
		Reason:    ReasonSignatureValidationFailed,
		Request:   request,
		Config:    config,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RequestSnapshot deserializes the stored request snapshot, used by the
// replay path to rebuild the original delivery.
func (f FailedWebhook) RequestSnapshot() (RequestSnapshot, error) {
	var snap RequestSnapshot
	if err := json.Unmarshal(f.Request, &snap); err != nil {
		return RequestSnapshot{}, fmt.Errorf("unmarshaling request snapshot: %w", err)
	}
	return snap, nil
}
