// Package aws wraps the AWS SDK pieces the engine uses: configuration
// loading and an SNS publisher.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Config holds AWS configuration.
type Config struct {
	Region string
}

// LoadAWSConfig loads SDK configuration through the default credential
// chain.
func LoadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
}
