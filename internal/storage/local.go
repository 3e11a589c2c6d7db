package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage stores objects under a directory on disk. Buckets are
// subdirectories; URLPrefix is where the router serves the directory.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root is the directory objects are written under.
func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) resolve(bucket, name string) (string, error) {
	rel := path.Clean("/" + path.Join(bucket, name))
	if rel == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid object path %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *LocalStorage) Upload(ctx context.Context, bucket, name string, data io.Reader, contentType string) error {
	dst, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close object: %w", err)
	}
	return nil
}

func (s *LocalStorage) Download(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	src, err := s.resolve(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, name, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, bucket, name string) error {
	target, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *LocalStorage) GetPublicURL(bucket, name string) string {
	return s.urlPrefix + path.Clean("/"+path.Join(bucket, name))
}
