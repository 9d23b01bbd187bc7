package storage

import (
	"context"
	"io"
	"time"
)

// Object is a stored blob opened for streaming
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ObjectStore defines the interface for blob storage operations. Uploads go
// straight from the client to the bucket via presigned URLs; the service
// only streams objects back out.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	Get(ctx context.Context, key string) (*Object, error)
}
