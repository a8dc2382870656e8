// Package storage is the filesystem abstraction behind product exports.
//
//	storage.Connect(ctx)
//	disk, err := storage.Use("s3")
//	err = disk.Put(ctx, "exports/products.csv", r)
//	url := disk.URL("exports/products.csv")
//
// Two drivers are available:
//
//   - "local": local filesystem (default)
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get returns a reader for the file. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists all files below directory, recursively.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL returns the public URL for path.
	URL(path string) string
}
