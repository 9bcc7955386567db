package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/repository"
)

// BlobStore is the PostgreSQL implementation of repository.BlobStore.
// Blobs live in a single table keyed by logical name; writes are upserts
// so the caller always observes a full overwrite.
type BlobStore struct {
	db Querier
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(db Querier) *BlobStore {
	return &BlobStore{db: db}
}

// EnsureSchema creates the blobs table if it does not exist.
func EnsureSchema(ctx context.Context, db Querier) error {
	const query = `
		CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create blobs table: %w", err)
	}
	return nil
}

// Get retrieves the blob stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT data FROM blobs WHERE key = $1`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blob %q: %w", key, err)
	}

	return data, nil
}

// Put stores the blob under key, replacing any previous value.
func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	const query = `
		INSERT INTO blobs (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to put blob %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM blobs WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Ensure interface is satisfied.
var _ repository.BlobStore = (*BlobStore)(nil)
