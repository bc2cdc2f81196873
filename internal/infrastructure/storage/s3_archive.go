// Package storage archives exported reports in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	infraconfig "github.com/orderbridge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ fulfillmentapp.ReportArchive = (*S3Archive)(nil)

const defaultLinkExpiration = 24 * time.Hour

// S3Archive stores report files in a bucket and hands back presigned links.
// Any S3-compatible backend works (AWS S3, RustFS, MinIO).
type S3Archive struct {
	client         *s3.Client
	presignClient  *s3.PresignClient
	bucket         string
	prefix         string
	linkExpiration time.Duration
	logger         *zap.Logger
}

// Option configures an S3Archive
type Option func(*S3Archive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3Archive) {
		s.logger = logger
	}
}

// WithLinkExpiration sets how long returned download links stay valid
func WithLinkExpiration(d time.Duration) Option {
	return func(s *S3Archive) {
		s.linkExpiration = d
	}
}

// WithPrefix stores every object under prefix
func WithPrefix(prefix string) Option {
	return func(s *S3Archive) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// NewS3Archive creates a new S3Archive from configuration.
func NewS3Archive(cfg *infraconfig.StorageConfig, opts ...Option) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := &S3Archive{
		client:         client,
		presignClient:  s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		linkExpiration: cfg.PresignExpiration,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	if archive.linkExpiration <= 0 {
		archive.linkExpiration = defaultLinkExpiration
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating report bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores data under key and returns a presigned download link for it.
// If the link cannot be signed the s3:// location is returned instead.
func (s *S3Archive) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	link, _, err := s.DownloadURL(ctx, key)
	if err != nil {
		s.logger.Warn("Report stored but link could not be signed", zap.String("key", objectKey), zap.Error(err))
		return s.Location(key), nil
	}
	s.logger.Debug("Report archived", zap.String("key", objectKey), zap.Int("bytes", len(data)))
	return link, nil
}

// DownloadURL returns a presigned GET link for key and when it expires.
func (s *S3Archive) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return "", time.Time{}, err
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.linkExpiration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, time.Now().Add(s.linkExpiration), nil
}

// Exists reports whether key has been archived.
func (s *S3Archive) Exists(ctx context.Context, key string) (bool, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// some S3-compatible services report a missing key with a bare error code
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check report existence: %w", err)
	}
	return true, nil
}

// Location is the s3:// address of key.
func (s *S3Archive) Location(key string) string {
	objectKey, _ := s.objectKey(key)
	return "s3://" + s.bucket + "/" + objectKey
}

// Bucket returns the bucket name
func (s *S3Archive) Bucket() string {
	return s.bucket
}

func (s *S3Archive) objectKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("report key is required")
	}
	if s.prefix == "" {
		return key, nil
	}
	return path.Join(s.prefix, key), nil
}
