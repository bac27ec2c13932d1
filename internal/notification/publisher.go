// Package notification publishes settlement outcomes to SNS so
// downstream consumers (alerting, bookkeeping) see every resolution.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/aws"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
	"go.opentelemetry.io/otel/attribute"
)

// SettlementEvent is the published payload for one resolved
// transaction.
type SettlementEvent struct {
	TxHash    string    `json:"txHash"`
	Kind      string    `json:"kind"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// eventFromOutcome flattens a tracker outcome into the wire payload.
func eventFromOutcome(o tracker.Outcome) SettlementEvent {
	ev := SettlementEvent{
		TxHash:    o.Request.TxHash,
		Kind:      o.Request.Kind.String(),
		Token:     o.Request.Token,
		Timestamp: time.Now().UTC(),
	}
	if o.Err != nil {
		ev.Status = "error"
		ev.Error = o.Err.Error()
		return ev
	}
	ev.Status = o.Status.String()
	return ev
}

// Publisher is the settlement notification sink.
type Publisher interface {
	PublishSettlement(ctx context.Context, outcome tracker.Outcome) error
}

// SNSPublisher publishes settlement events to an SNS topic.
type SNSPublisher struct {
	snsClient *aws.SNSClient
	topicARN  string
	logger    *observability.Logger
	tracer    observability.Tracer
}

// SNSPublisherConfig holds publisher configuration.
type SNSPublisherConfig struct {
	SNSClient *aws.SNSClient
	TopicARN  string
	Logger    *observability.Logger
	Tracer    observability.Tracer
}

// NewSNSPublisher creates a settlement event publisher.
func NewSNSPublisher(cfg SNSPublisherConfig) (*SNSPublisher, error) {
	if cfg.SNSClient == nil {
		return nil, fmt.Errorf("SNS client is required")
	}
	if cfg.TopicARN == "" {
		return nil, fmt.Errorf("SNS topic ARN is required")
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NewNoopTracer()
	}

	return &SNSPublisher{
		snsClient: cfg.SNSClient,
		topicARN:  cfg.TopicARN,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
	}, nil
}

// PublishSettlement publishes one resolution. Message attributes carry
// the kind and status so subscribers can filter without parsing the
// payload.
func (p *SNSPublisher) PublishSettlement(ctx context.Context, outcome tracker.Outcome) error {
	event := eventFromOutcome(outcome)

	ctx, span := p.tracer.StartSpan(
		ctx,
		"SNSPublisher.PublishSettlement",
		observability.WithAttributes(
			attribute.String("tx_hash", event.TxHash),
			attribute.String("status", event.Status),
			attribute.String("topic_arn", p.topicARN),
		),
	)
	defer span.End()

	attributes := map[string]string{
		"kind":   event.Kind,
		"status": event.Status,
	}

	if err := p.snsClient.Publish(ctx, p.topicARN, event, attributes); err != nil {
		span.NoticeError(err)
		if p.logger != nil {
			p.logger.LogError(ctx, "failed to publish settlement event", err,
				"tx", event.TxHash,
				"topic_arn", p.topicARN,
			)
		}
		return fmt.Errorf("publishing settlement event: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("published settlement event",
			"tx", event.TxHash,
			"kind", event.Kind,
			"status", event.Status,
		)
	}
	return nil
}

// CircuitBreakerState exposes the SNS breaker state for health
// reporting.
func (p *SNSPublisher) CircuitBreakerState() string {
	return p.snsClient.CircuitBreakerState().String()
}
