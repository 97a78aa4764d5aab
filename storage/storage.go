package storage

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrDoesNotExist is returned by every backend when a key is missing.
var ErrDoesNotExist = errors.New("does not exist")

// System defines the operations for interacting with the storage backend
type System interface {
	// Write stores data under key, replacing what was there
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the data stored under key or ErrDoesNotExist
	Read(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	GetKeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
