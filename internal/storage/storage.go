package storage

import (
	"context"
	"io"
	"time"

	"file-portal/internal/domain"
)

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket           string
	Key              string
	ContentType      string
	Size             int64
	ProgressCallback func(done, total int64)
}

// Service is the object storage provider consumed by the portal.
type Service interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]domain.Object, error)
	Upload(ctx context.Context, body io.Reader, opts UploadOptions) error
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
