package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/kendall-kelly/cleancans-api/config"
)

// PhotoStore resolves and removes job photos kept in object storage.
// Photos are uploaded by the client directly; the API only stores keys.
type PhotoStore interface {
	// PresignURL returns a time-limited URL for reading the object at key
	PresignURL(ctx context.Context, key string) (string, error)
	// Delete removes the object at key
	Delete(ctx context.Context, key string) error
}

// S3PhotoStore implements PhotoStore using AWS S3
type S3PhotoStore struct {
	client *s3.Client
	bucket string
	expiry time.Duration
}

// NewS3PhotoStore builds an S3 client from the application configuration
func NewS3PhotoStore(ctx context.Context, cfg *appConfig.Config) (*S3PhotoStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSS3PathStyle
		if cfg.AWSS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSS3Endpoint)
		}
	})

	expiry := cfg.PhotoURLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &S3PhotoStore{client: client, bucket: cfg.AWSS3Bucket, expiry: expiry}, nil
}

// PresignURL generates a presigned GET URL for key
func (s *S3PhotoStore) PresignURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	slog.DebugContext(ctx, "generated presigned photo url", "key", key)
	return request.URL, nil
}

// Delete deletes the object at key
func (s *S3PhotoStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from S3: %w", err)
	}
	return nil
}
