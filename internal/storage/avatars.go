// Package storage uploads avatar images to an S3-compatible object store
// and hands back the public URL persisted on the user record.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/contacts-api/internal/config"
)

// ErrNotConfigured is returned by NewAvatarStore when the bucket or
// credentials are missing; the avatar endpoint then reports the feature as
// unavailable instead of failing on the first upload.
var ErrNotConfigured = errors.New("avatar storage not configured")

// AvatarStore wraps an S3 client bound to one bucket.  A custom
// BaseEndpoint points uploads at MinIO in development.
type AvatarStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewAvatarStore builds the S3 client from static credentials.  The client
// is constructed once at startup and shared; it is safe for concurrent use.
func NewAvatarStore(ctx context.Context, cfg config.S3Config) (*AvatarStore, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true // MinIO serves buckets by path, not vhost
		}
	})
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = strings.TrimSuffix(cfg.BaseEndpoint, "/") + "/" + cfg.Bucket
	}
	return &AvatarStore{client: client, bucket: cfg.Bucket, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload stores the image under a random key prefixed with the owner's id
// and returns its public URL.  A re-upload gets a fresh key, so CDN and
// browser caches never serve the previous image under the new URL.
func (s *AvatarStore) Upload(ctx context.Context, userID uint64, contentType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("avatars/%d/%s", userID, uuid.New())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar object: %w", err)
	}
	return s.baseURL + "/" + key, nil
}
