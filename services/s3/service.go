package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Service archives exported reports in a single bucket.
type S3Service struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

func NewS3Service(ctx context.Context, cfg *S3ClientConfig, logger *slog.Logger) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	awsCfg, err := cfg.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	// MinIO and localstack need path-style addressing.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.customEndpoint()
	})
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Service{client: client, bucket: cfg.Bucket, logger: logger.With("component", "S3Service")}, nil
}

// Put uploads body under key, overwriting any existing object, and
// returns its s3:// location.
func (s *S3Service) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info("object uploaded", "location", location, "bytes", len(body))
	return location, nil
}
