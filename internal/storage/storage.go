package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// Storage abstracts the blob backend holding image originals and derivatives.
type Storage interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// SignedURL returns a time-limited URL for reading the object at path.
	SignedURL(path string, ttl time.Duration) (string, error)
}
