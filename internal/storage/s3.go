package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the settings for an S3-compatible object store.
// Endpoint may point at AWS itself or a self-hosted MinIO; PublicBaseURL
// is the prefix objects are served from (bucket website or CDN front).
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store implements ObjectStore against an S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
	config S3Config
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store builds the S3 client with static credentials and an optional
// custom endpoint.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most self-hosted stores need path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, config: cfg}, nil
}

// Put writes the object publicly readable and returns its key and durable
// URL once the provider confirms the write.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (*StoredObject, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: putting object %s: %w", key, err)
	}

	return &StoredObject{
		Key: key,
		URL: s.publicURL(key),
	}, nil
}

// Delete removes an object. Callers treat failures as best-effort cleanup
// and log rather than abort.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: deleting object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	if s.config.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.config.PublicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, key)
}
