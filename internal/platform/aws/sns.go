package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/resilience"
)

// SNSClient wraps the SNS client with a circuit breaker and retries.
// Notification delivery is best-effort and must never block trading, so
// failures open the breaker instead of propagating pressure upstream.
type SNSClient struct {
	client         *sns.Client
	circuitBreaker *resilience.CircuitBreaker
	retryConfig    resilience.RetryConfig
	logger         *observability.Logger
	metrics        *observability.Metrics
}

// SNSClientConfig holds SNS client configuration.
type SNSClientConfig struct {
	AWSConfig      aws.Config
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	RetryConfig    *resilience.RetryConfig
	CircuitBreaker *resilience.CircuitBreaker
}

// NewSNSClient creates an SNS client.
func NewSNSClient(cfg SNSClientConfig) *SNSClient {
	client := sns.NewFromConfig(cfg.AWSConfig)

	retryConfig := resilience.DefaultRetryConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}

	circuitBreaker := cfg.CircuitBreaker
	if circuitBreaker == nil {
		circuitBreaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "sns",
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
			OnStateChange: func(from, to resilience.State) {
				if cfg.Logger != nil {
					cfg.Logger.Info("SNS circuit breaker state changed",
						"from", from.String(),
						"to", to.String(),
					)
				}
				cfg.Metrics.SetCircuitBreakerState(context.Background(), "sns", int64(to))
			},
		})
	}

	return &SNSClient{
		client:         client,
		circuitBreaker: circuitBreaker,
		retryConfig:    retryConfig,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
	}
}

// Publish JSON-encodes the message and publishes it to the topic, with
// retry inside the circuit breaker.
func (s *SNSClient) Publish(ctx context.Context, topicARN string, message interface{}, attributes map[string]string) error {
	start := time.Now()

	messageJSON, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = s.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, s.retryConfig, func(ctx context.Context) error {
			return s.publishOnce(ctx, topicARN, string(messageJSON), attributes)
		})
	})

	status := "success"
	if err != nil {
		status = "error"
		if s.logger != nil {
			s.logger.LogError(ctx, "SNS publish failed", err,
				"topic_arn", topicARN,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}
	s.metrics.RecordPublish(ctx, status, time.Since(start))

	return err
}

func (s *SNSClient) publishOnce(ctx context.Context, topicARN, message string, attributes map[string]string) error {
	messageAttributes := make(map[string]types.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		messageAttributes[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(topicARN),
		Message:           aws.String(message),
		MessageAttributes: messageAttributes,
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("SNS publish failed: %w", err)
	}
	return nil
}

// CircuitBreakerState returns the current breaker state.
func (s *SNSClient) CircuitBreakerState() resilience.State {
	return s.circuitBreaker.State()
}
