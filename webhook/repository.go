package webhook

import (
	"context"
	"errors"

	"github.com/moverly/leadgate/provider"
)

// ErrNotFound is returned when a failed webhook record does not exist
var ErrNotFound = errors.New("failed webhook not found")

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// FailureReader provides read operations for failed webhook records
type FailureReader interface {
	Get(ctx context.Context, id string) (FailedWebhook, error)
	List(ctx context.Context, limit int) ([]FailedWebhook, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// FailureWriter provides write operations for failed webhook records
type FailureWriter interface {
	/* Store persists a failure record and returns its ID
	 * Must be the only write the verification path performs
	 */
	Store(ctx context.Context, failed FailedWebhook) (string, error)
	/* UpdateStatus is only invoked by the manual replay tooling,
	 * never by the verification path
	 */
	UpdateStatus(ctx context.Context, id string, status Status) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type FailureRepository interface {
	FailureReader
	FailureWriter
	Close(ctx context.Context) error
}

// Queue provides operations for the asynchronous processing stream
type Queue interface {
	/* Enqueue adds a verified delivery to the provider's stream
	 * keyed by the job's call ID
	 */
	Enqueue(ctx context.Context, job Job) error
	/* Consume reads jobs from the stream for a given provider
	 * Blocks briefly until a job is available or context is cancelled
	 */
	Consume(ctx context.Context, p provider.Provider) ([]Job, error)
	/* Acknowledge marks a job as successfully processed
	 * Unacknowledged jobs are redelivered by the queue, not by the
	 * verification path
	 */
	Acknowledge(ctx context.Context, p provider.Provider, callID string) error
	Close(ctx context.Context) error
}
