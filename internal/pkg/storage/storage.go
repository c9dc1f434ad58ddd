package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("file not found")

type FileStorage interface {
	// Put writes the full content to path, replacing any existing file atomically
	Put(ctx context.Context, path string, content io.Reader) error

	// Open retrieves a file; ErrNotFound when missing
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; missing files are not an error
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the file names directly under dir, sorted
	List(ctx context.Context, dir string) ([]string, error)
}
