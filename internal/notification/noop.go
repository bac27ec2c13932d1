package notification

import (
	"context"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

// NoOpPublisher logs settlement outcomes instead of publishing them.
// Used when SNS is not configured.
type NoOpPublisher struct {
	logger *observability.Logger
}

// NewNoOpPublisher creates a log-only publisher.
func NewNoOpPublisher(logger *observability.Logger) *NoOpPublisher {
	return &NoOpPublisher{logger: logger}
}

// PublishSettlement logs the outcome.
func (p *NoOpPublisher) PublishSettlement(ctx context.Context, outcome tracker.Outcome) error {
	if p.logger != nil {
		event := eventFromOutcome(outcome)
		p.logger.Info("settlement resolved (SNS disabled)",
			"tx", event.TxHash,
			"kind", event.Kind,
			"status", event.Status,
			"error", event.Error,
		)
	}
	return nil
}
