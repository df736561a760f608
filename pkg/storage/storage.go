// Package storage provides the narrow persistence capability the store
// engine runs on. The engine never knows which physical backend it uses.
package storage

import (
	"context"
	"errors"
)

// Common errors for backend operations.
var (
	ErrNotFound     = errors.New("object not found")
	ErrReadFailed   = errors.New("read failed")
	ErrWriteFailed  = errors.New("write failed")
	ErrDeleteFailed = errors.New("delete failed")
)

// ObjectInfo describes one stored object. Sizes come back from List so
// the retention manager can enforce its byte budget without extra stats.
type ObjectInfo struct {
	Path      string
	SizeBytes int64
}

// Backend abstracts the filesystem-level operations the store needs.
// Implementations must make Write atomic with respect to concurrent
// readers: a reader sees either the old object or the new one, never a
// torn intermediate state.
type Backend interface {
	// Read returns the full contents of an object.
	// Returns ErrNotFound if the object does not exist.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the object at path with data.
	Write(ctx context.Context, path string, data []byte) error

	// List returns all objects whose path starts with prefix,
	// including their sizes. An empty prefix lists everything.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
