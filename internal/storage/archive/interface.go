// internal/storage/archive/interface.go
package archive

import "context"

// Storage persists run artifacts (series CSVs, ratio documents, fetched
// kline files) under slash-separated paths. Backends are safe for concurrent
// use.
type Storage interface {
	// Write stores data at the given path, replacing any existing object.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves the object at the given path. A missing object
	// reports core.ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns the paths of all objects under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at the given path.
	Delete(ctx context.Context, path string) error

	// Exists reports whether an object is stored at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
