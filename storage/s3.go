package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads to a bucket and serves through the bucket endpoint or a CDN.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Store loads AWS credentials from the default chain. When assetBaseURL is
// empty, URLs point at the bucket's virtual-hosted endpoint.
func NewS3Store(ctx context.Context, bucket, region, assetBaseURL string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	baseURL := assetBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		baseURL:  baseURL,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := newKey(name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" || isAbsoluteURL(key) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	if key == "" || isAbsoluteURL(key) {
		return key
	}
	return joinURL(s.baseURL, key)
}
