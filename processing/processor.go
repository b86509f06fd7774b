package processing

import (
	"context"

	"github.com/moverly/leadgate/webhook"
	"github.com/rs/zerolog"
)

/* Processor is the boundary to the business side of the pipeline:
 * customer and order creation from a verified lead delivery. The
 * gateway only guarantees that every job it hands over carried a valid
 * signature; everything past this interface belongs to the processing
 * system, including its retry policy.
 */
type Processor interface {
	Process(ctx context.Context, job webhook.Job) error
}

// LogProcessor is the default Processor: it records the job and
// succeeds. Deployments wire their own implementation.
type LogProcessor struct {
	logger zerolog.Logger
}

// NewLogProcessor creates a processor that only logs received jobs
func NewLogProcessor(logger zerolog.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) Process(ctx context.Context, job webhook.Job) error {
	p.logger.Info().
		Str("call_id", job.CallID).
		Str("provider", job.Provider.String()).
		Int("body_bytes", len(job.Delivery.Body)).
		Msg("processing lead delivery")
	return nil
}
