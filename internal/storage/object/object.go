// internal/storage/object/object.go
package object

import "context"

// Store defines the interface for the object storage backends holding
// price histories, the transaction ledger, and API tokens.
type Store interface {
	// Put stores data under the given key, overwriting any existing object
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the object stored under key. A missing object returns
	// an error matching core.ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
