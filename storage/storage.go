package storage

import (
	"context"
	"io"
)

// Storage abstracts the warehouse filesystem that holds table metadata and
// data files. Paths are slash-separated and relative to the warehouse root.
type Storage interface {
	Write(ctx context.Context, filepath string, data io.Reader) error
	Read(ctx context.Context, filepath string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, filepath string) (bool, error)
	Delete(ctx context.Context, filepath string) error
	// RemoveAll deletes everything under prefix. Only the post-commit
	// cleanup step calls this.
	RemoveAll(ctx context.Context, prefix string) error
	// Rename moves a whole prefix. The local implementation is atomic;
	// object stores fall back to copy-then-delete.
	Rename(ctx context.Context, oldPrefix, newPrefix string) error
}
