package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/moverly/leadgate/provider"
)

// QueueLengther reports the number of jobs waiting for a provider
type QueueLengther interface {
	Len(ctx context.Context, p provider.Provider) (int64, error)
}

// FailureCounter reports failure-record counts grouped by status
type FailureCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// GatewayCollector implements the Collector interface over the queue
// and the failure store
type GatewayCollector struct {
	queue     QueueLengther
	failures  FailureCounter
	providers *provider.Loader
}

// NewGatewayCollector creates a new gateway metrics collector
func NewGatewayCollector(queue QueueLengther, failures FailureCounter, providers *provider.Loader) *GatewayCollector {
	return &GatewayCollector{
		queue:     queue,
		failures:  failures,
		providers: providers,
	}
}

// Collect gathers all metrics from the gateway
func (c *GatewayCollector) Collect(ctx context.Context) (Metrics, error) {
	queueLengths, err := c.GetQueueLengths(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue lengths: %w", err)
	}

	failedCounts, err := c.GetFailedCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting failed counts: %w", err)
	}

	return Metrics{
		QueueLengths: queueLengths,
		FailedCounts: failedCounts,
		Timestamp:    time.Now(),
	}, nil
}

// GetQueueLengths returns the number of pending jobs in each provider stream
func (c *GatewayCollector) GetQueueLengths(ctx context.Context) (map[string]int64, error) {
	queueLengths := make(map[string]int64)

	for _, cfg := range c.providers.List() {
		length, err := c.queue.Len(ctx, cfg.Provider)
		if err != nil {
			// Continue even if one stream fails
			continue
		}
		queueLengths[cfg.Provider.String()] = length
	}

	return queueLengths, nil
}

// GetFailedCounts returns counts of failure records grouped by status
func (c *GatewayCollector) GetFailedCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := c.failures.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting failure records: %w", err)
	}
	if counts == nil {
		counts = make(map[string]int64)
	}

	// Always report every lifecycle status, even at zero
	for _, status := range []string{"pending", "retried", "resolved"} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	return counts, nil
}
