package processing

import (
	"context"
	"sync"

	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
	"github.com/rs/zerolog"
)

/* Runner consumes verified deliveries from the queue and dispatches
 * them to the Processor. On processing failure the job is not
 * acknowledged, so the queue's consumer group redelivers it; the
 * gateway itself never retries. Ordering between deliveries for the
 * same provider is not guaranteed and must not be assumed here.
 */
type Runner struct {
	Queue     webhook.Queue
	Processor Processor
	logger    zerolog.Logger
}

// NewRunner creates a new runner with dependency injection
func NewRunner(queue webhook.Queue, processor Processor, logger zerolog.Logger) *Runner {
	return &Runner{
		Queue:     queue,
		Processor: processor,
		logger:    logger,
	}
}

// Run consumes jobs for all providers until the context is cancelled
func (r *Runner) Run(ctx context.Context, providers []provider.Provider) {
	var wg sync.WaitGroup
	for _, p := range providers {
		wg.Add(1)
		go func(p provider.Provider) {
			defer wg.Done()
			r.consumeLoop(ctx, p)
		}(p)
	}
	wg.Wait()
}

func (r *Runner) consumeLoop(ctx context.Context, p provider.Provider) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobs, err := r.Queue.Consume(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error().Err(err).
				Str("provider", p.String()).
				Msg("consuming from stream")
			continue
		}

		for _, job := range jobs {
			r.handle(ctx, p, job)
		}
	}
}

func (r *Runner) handle(ctx context.Context, p provider.Provider, job webhook.Job) {
	if err := r.Processor.Process(ctx, job); err != nil {
		// Left unacknowledged: the consumer group redelivers it
		r.logger.Error().Err(err).
			Str("provider", p.String()).
			Str("call_id", job.CallID).
			Msg("processing job")
		return
	}

	if err := r.Queue.Acknowledge(ctx, p, job.CallID); err != nil {
		r.logger.Error().Err(err).
			Str("provider", p.String()).
			Str("call_id", job.CallID).
			Msg("acknowledging job")
		return
	}

	r.logger.Info().
		Str("provider", p.String()).
		Str("call_id", job.CallID).
		Msg("job processed")
}
