package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/repository"
)

// fakeBlobStore is a minimal in-memory BlobStore for store tests.
type fakeBlobStore struct {
	blobs    map[string][]byte
	putError error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if f.putError != nil {
		return f.putError
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func newTestStore(t *testing.T, blobs *fakeBlobStore) *TripStore {
	t.Helper()
	s := NewTripStore(blobs)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	return s
}

func TestLoad_AbsentBlobYieldsEmptyCollection(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	if got := s.List(context.Background()); len(got) != 0 {
		t.Errorf("expected empty collection, got %v", got)
	}
}

func TestLoad_MalformedBlobYieldsEmptyCollection(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	blobs.blobs[StorageKey] = []byte("{corrupted")

	s := newTestStore(t, blobs)
	if got := s.List(context.Background()); len(got) != 0 {
		t.Errorf("expected malformed blob discarded, got %v", got)
	}
}

func TestAdd_StampsTimestampsAndPersists(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	s := newTestStore(t, blobs)

	added, err := s.Add(context.Background(), domain.Trip{ID: "trip-1", Title: "Tokyo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added.CreatedAt.IsZero() || added.UpdatedAt.IsZero() {
		t.Error("expected CreatedAt and UpdatedAt stamped")
	}
	if !added.CreatedAt.Equal(added.UpdatedAt) {
		t.Error("expected CreatedAt == UpdatedAt on creation")
	}

	var persisted []domain.Trip
	if err := json.Unmarshal(blobs.blobs[StorageKey], &persisted); err != nil {
		t.Fatalf("failed to decode persisted blob: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != "trip-1" {
		t.Errorf("expected trip persisted, got %v", persisted)
	}
}

func TestUpdate_RefreshesUpdatedAtPreservesCreatedAt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	added, err := s.Add(context.Background(), domain.Trip{ID: "trip-1", Title: "Tokyo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := created.Add(48 * time.Hour)
	s.now = func() time.Time { return later }

	added.Title = "Tokyo revised"
	// A stale CreatedAt from the caller must not stick.
	added.CreatedAt = later

	updated, err := s.Update(context.Background(), added)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt preserved as %v, got %v", created, updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("expected UpdatedAt refreshed to %v, got %v", later, updated.UpdatedAt)
	}
}

func TestUpdate_UnknownTrip_Rejected(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	_, err := s.Update(context.Background(), domain.Trip{ID: "ghost"})
	if !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestDelete_RemovesTripAndPersists(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	s := newTestStore(t, blobs)

	if _, err := s.Add(context.Background(), domain.Trip{ID: "trip-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(context.Background(), "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(context.Background(), "trip-1"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected trip gone, got %v", err)
	}

	var persisted []domain.Trip
	if err := json.Unmarshal(blobs.blobs[StorageKey], &persisted); err != nil {
		t.Fatalf("failed to decode persisted blob: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("expected empty persisted collection, got %v", persisted)
	}
}

func TestSetCompleted_TogglesAndRefreshesUpdatedAt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	added, err := s.Add(context.Background(), domain.Trip{ID: "trip-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := added.UpdatedAt.Add(time.Hour)
	s.now = func() time.Time { return later }

	done, err := s.SetCompleted(context.Background(), "trip-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done.IsCompleted {
		t.Error("expected trip marked completed")
	}
	if !done.UpdatedAt.Equal(later) {
		t.Errorf("expected UpdatedAt refreshed, got %v", done.UpdatedAt)
	}
}

func TestReorderLocations_ReplacesItineraryOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	_, err := s.Add(context.Background(), domain.Trip{
		ID: "trip-1",
		Locations: []domain.Location{
			{ID: "loc-1", Name: "first"},
			{ID: "loc-2", Name: "second"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reordered, err := s.ReorderLocations(context.Background(), "trip-1", []domain.Location{
		{ID: "loc-2", Name: "second"},
		{ID: "loc-1", Name: "first"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reordered.Locations[0].ID != "loc-2" || reordered.Locations[1].ID != "loc-1" {
		t.Errorf("expected reversed order, got %v", reordered.Locations)
	}
}

func TestList_ReturnsClones(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	if _, err := s.Add(context.Background(), domain.Trip{
		ID:        "trip-1",
		Title:     "Tokyo",
		Locations: []domain.Location{{ID: "loc-1", Name: "Shibuya"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.List(context.Background())
	got[0].Title = "mutated"
	got[0].Locations[0].Name = "mutated"

	stored, err := s.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Title != "Tokyo" || stored.Locations[0].Name != "Shibuya" {
		t.Error("caller mutation leaked into the canonical collection")
	}
}

func TestAdd_PersistFailureLeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	s := newTestStore(t, blobs)
	blobs.putError = errors.New("disk full")

	if _, err := s.Add(context.Background(), domain.Trip{ID: "trip-1"}); err == nil {
		t.Fatal("expected persist failure to surface")
	}

	// The failed add must not linger in memory, or memory and blob diverge.
	if got := s.List(context.Background()); len(got) != 0 {
		t.Errorf("expected collection unchanged after failed add, got %v", got)
	}
}

func TestDelete_PersistFailureLeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	s := newTestStore(t, blobs)
	if _, err := s.Add(context.Background(), domain.Trip{ID: "trip-1", Title: "Tokyo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blobs.putError = errors.New("disk full")
	if err := s.Delete(context.Background(), "trip-1"); err == nil {
		t.Fatal("expected persist failure to surface")
	}

	stored, err := s.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("expected trip to survive a failed delete, got %v", err)
	}
	if stored.Title != "Tokyo" {
		t.Errorf("expected trip intact, got %v", stored)
	}
}

func TestUpdate_PersistFailureLeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	blobs := newFakeBlobStore()
	s := newTestStore(t, blobs)
	if _, err := s.Add(context.Background(), domain.Trip{ID: "trip-1", Title: "Tokyo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blobs.putError = errors.New("disk full")
	if _, err := s.Update(context.Background(), domain.Trip{ID: "trip-1", Title: "Osaka"}); err == nil {
		t.Fatal("expected persist failure to surface")
	}

	stored, err := s.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Title != "Tokyo" {
		t.Errorf("expected prior title kept, got %q", stored.Title)
	}
}

func TestReplaceAll_SwapsCollectionWholesale(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeBlobStore())
	if _, err := s.Add(context.Background(), domain.Trip{ID: "old"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.ReplaceAll(context.Background(), []domain.Trip{{ID: "new"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.List(context.Background())
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("expected wholesale replacement, got %v", got)
	}
}
