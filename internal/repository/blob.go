package repository

import "context"

// BlobStore is the local persistence surface for the trip collection.
// It stores whole serialized blobs under a logical key; there is no
// incremental update, every write is a full overwrite.
type BlobStore interface {
	// Get retrieves the blob stored under key.
	// Returns ErrNotFound when no blob exists for the key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the blob under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the blob stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}
