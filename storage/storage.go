// Package storage is the object-storage gateway: upload, download and
// delete of opaque encrypted blobs against a remote store. Operations are
// whole-blob (the file is held in memory during transfer) and carry no
// internal retry policy; retries belong to the caller or the surrounding
// infrastructure.
package storage

import (
	"context"
	"fmt"
)

const contentType = "application/octet-stream"

// ObjectStore is implemented by each remote backend.
type ObjectStore interface {
	// Upload sends the file at localPath to the store under key,
	// overwriting any existing object, and returns the canonical stored
	// key. The local file is the caller's to clean up either way.
	Upload(ctx context.Context, localPath, key string) (string, error)

	// Download fetches the object under key and writes it to localPath.
	// When the fetch fails, no file is created at localPath.
	Download(ctx context.Context, key, localPath string) error

	// Delete removes the object under key. Deleting an absent object is
	// success.
	Delete(ctx context.Context, key string) error
}

// Error is a failed remote blob operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err) }
func (e *Error) Unwrap() error { return e.Err }
