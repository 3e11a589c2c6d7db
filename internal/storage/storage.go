// Package storage keeps uploaded audio files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, path string) error
	GetPublicURL(bucket, path string) string
}

// New returns the backend selected by cfg.Backend.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal, "":
		return NewLocalStorage(cfg.UploadDir, "/uploads")
	case config.StorageBackendSupabase:
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
