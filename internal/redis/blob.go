package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/TianyiLi/trip-schedule/internal/repository"
)

// Key prefix for trip collection blobs.
const blobKeyPrefix = "blob:"

// BlobStore is the Redis implementation of repository.BlobStore.
// Blobs are stored without TTL: the trip collection is canonical local
// state, not a cache.
type BlobStore struct {
	client *redis.Client
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(client *redis.Client) *BlobStore {
	return &BlobStore{client: client}
}

// Get retrieves the blob stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, blobKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blob %q: %w", key, err)
	}
	return data, nil
}

// Put stores the blob under key, replacing any previous value.
func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, blobKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put blob %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, blobKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Ensure interface is satisfied.
var _ repository.BlobStore = (*BlobStore)(nil)
