package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/raugupatis/raugupatis-log/internal/config"
	"go.uber.org/zap"
)

// S3Storage keeps objects in an S3-compatible bucket (AWS S3, MinIO, ...).
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

type S3Option func(*S3Storage)

func WithLogger(logger *zap.Logger) S3Option {
	return func(storage *S3Storage) {
		if logger != nil {
			storage.logger = logger
		}
	}
}

// WithKeyPrefix stores every object below prefix inside the bucket.
func WithKeyPrefix(prefix string) S3Option {
	return func(storage *S3Storage) {
		storage.prefix = strings.Trim(prefix, "/")
	}
}

// NewS3Storage builds a client from cfg. Static credentials are used when an
// access key is configured; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg config.S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("s3 access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		options.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	storage := &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

func (storage *S3Storage) Bucket() string {
	return storage.bucket
}

func (storage *S3Storage) objectKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	if storage.prefix == "" {
		return key, nil
	}
	return storage.prefix + "/" + key, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (storage *S3Storage) Ping(ctx context.Context) error {
	_, err := storage.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(storage.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", storage.bucket, err)
	}
	return nil
}

// Put uploads body. Non-seekable bodies are buffered first because the SDK
// needs to rewind the payload to sign it.
func (storage *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	objectKey, err := storage.objectKey(key)
	if err != nil {
		return err
	}

	payload, ok := body.(io.ReadSeeker)
	if !ok {
		buffered, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		payload = bytes.NewReader(buffered)
		size = int64(len(buffered))
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(storage.bucket),
		Key:    aws.String(objectKey),
		Body:   payload,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := storage.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", objectKey, err)
	}
	storage.logger.Debug("object stored", zap.String("bucket", storage.bucket), zap.String("key", objectKey))
	return nil
}

func (storage *S3Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := storage.objectKey(key)
	if err != nil {
		return nil, err
	}
	output, err := storage.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(storage.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", objectKey, err)
	}
	return output.Body, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (storage *S3Storage) Delete(ctx context.Context, key string) error {
	objectKey, err := storage.objectKey(key)
	if err != nil {
		return err
	}
	if _, err := storage.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(storage.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", objectKey, err)
	}
	return nil
}
