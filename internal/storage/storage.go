package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Object is a single upload.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores generated statements in remote object storage.
type Service interface {
	PutObject(ctx context.Context, obj Object) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
