package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the gateway.
type Metrics struct {
	// QueueLengths maps provider name to the number of jobs waiting in
	// its stream
	QueueLengths map[string]int64 `json:"queue_lengths"`

	// FailedCounts maps failure-record status to the number of records
	// in that status
	FailedCounts map[string]int64 `json:"failed_counts"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the gateway.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueLengths returns the number of pending jobs per provider
	GetQueueLengths(ctx context.Context) (map[string]int64, error)

	// GetFailedCounts returns the count of failure records by status
	GetFailedCounts(ctx context.Context) (map[string]int64, error)
}
