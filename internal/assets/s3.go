package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Assets implements AssetStore for AWS S3 (or S3-compatible stores such as
// MinIO via a custom endpoint).
type S3Assets struct {
	client *s3.Client
	bucket string
	config S3Config
}

// S3Config holds configuration for S3-backed assets.
type S3Config struct {
	// Region is the AWS region for the bucket.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
	// PublicBaseURL, when set, is prepended to object keys to form the
	// reference stored on events. When empty the reference is the bare key.
	PublicBaseURL string
}

// DefaultS3Config returns the default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{Region: "us-east-1"}
}

// NewS3Assets creates a new S3 asset store.
func NewS3Assets(ctx context.Context, bucket string, cfg S3Config) (*S3Assets, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Assets{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: bucket,
		config: cfg,
	}, nil
}

// NewS3AssetsWithClient creates an S3 asset store with a pre-configured
// client.
func NewS3AssetsWithClient(client *s3.Client, bucket string, cfg S3Config) *S3Assets {
	return &S3Assets{client: client, bucket: bucket, config: cfg}
}

// Put uploads the blob and returns its reference.
func (s *S3Assets) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := objectKey(name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPutFailed, err)
	}

	if s.config.PublicBaseURL != "" {
		return s.config.PublicBaseURL + "/" + key, nil
	}
	return key, nil
}

// Delete removes the blob for ref. S3 deletes are idempotent, so a missing
// object is not an error.
func (s *S3Assets) Delete(ctx context.Context, ref string) error {
	key := ref
	if s.config.PublicBaseURL != "" {
		prefix := s.config.PublicBaseURL + "/"
		if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
			key = ref[len(prefix):]
		}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}
