// Package storage holds the file storage abstraction for uploaded documents
// plus the pure name/reference resolution helpers. Files are transient: they
// exist between a successful Write and the scheduled cleanup removal.
package storage

import "context"

// Storage persists uploaded payloads under generated names.
// Write returns a backend-specific location (an absolute path for the disk
// backend, an object key for the s3 backend); Stat and Remove take that
// location back. Implementations must be safe for concurrent use.
type Storage interface {
	// Write stores data under name and returns the resulting location.
	Write(ctx context.Context, name string, data []byte) (string, error)
	// Stat returns the stored size in bytes. When the file is gone the
	// error matches errors.Is(err, fs.ErrNotExist); any other error is a
	// real backend failure.
	Stat(ctx context.Context, location string) (int64, error)
	// Remove deletes the stored file.
	Remove(ctx context.Context, location string) error
}
