// Package storage keeps fermentation photo files on the local filesystem or
// in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/raugupatis/raugupatis-log/internal/config"
	"go.uber.org/zap"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Backend stores photo files under opaque slash-separated keys.
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var (
	_ Backend = (*LocalStorage)(nil)
	_ Backend = (*S3Storage)(nil)
)

// New builds the backend selected by cfg.Storage.Backend. An S3 bucket must
// be reachable before the server starts.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Storage.Backend {
	case config.StorageBackendLocal:
		return NewLocalStorage(cfg.Storage.UploadsDir)
	case config.StorageBackendS3:
		bucket, err := NewS3Storage(ctx, cfg.S3, WithLogger(logger), WithKeyPrefix(cfg.S3.Prefix))
		if err != nil {
			return nil, err
		}
		if err := bucket.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("using s3 photo storage", zap.String("bucket", bucket.Bucket()), zap.String("prefix", bucket.prefix))
		return bucket, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
