// Package storage provides object storage abstractions for persisting
// column store segments and benchmark reports. Objects are addressed by
// slash-separated paths and handled as byte blobs.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrPutFailed      = errors.New("put failed")
	ErrGetFailed      = errors.New("get failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts object storage operations.
// Implementations include S3 and local filesystem for testing.
type ObjectStorage interface {
	// Put writes data to the given object path, overwriting any
	// existing object.
	Put(ctx context.Context, objectPath string, data []byte) error

	// Get reads the full contents of an object.
	// Returns ErrObjectNotFound if the object does not exist.
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// List returns all object paths under the given prefix, sorted
	// lexically. Segment recovery depends on the ordering.
	List(ctx context.Context, prefix string) ([]string, error)
}
