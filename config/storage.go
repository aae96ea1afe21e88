package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the S3 client used to fetch s3:// documents
type S3Config struct {
	Client *s3.Client
}

// NewS3Config initializes the S3 client from the shared AWS configuration chain
func NewS3Config(ctx context.Context, storage StorageConfig) (*S3Config, error) {
	var opts []func(*config.LoadOptions) error
	if storage.Region != "" {
		opts = append(opts, config.WithRegion(storage.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client: s3.NewFromConfig(awsCfg),
	}, nil
}
