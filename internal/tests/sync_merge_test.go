package tests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/codec"
	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/service"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

// ──────────────────────────────────────────────
// 1. MERGE-BASED CLOUD SYNC
// ──────────────────────────────────────────────

// makeTrip builds a minimal valid trip for test setup.
func makeTrip(id, title string, updatedAt time.Time) domain.Trip {
	return domain.Trip{
		ID:          id,
		Title:       title,
		Description: "test trip",
		StartDate:   updatedAt.AddDate(0, 0, 7),
		EndDate:     updatedAt.AddDate(0, 0, 10),
		Locations:   []domain.Location{},
		CreatedAt:   updatedAt.Add(-time.Hour),
		UpdatedAt:   updatedAt,
	}
}

// seedLocal loads trips into a fresh TripStore backed by a mock blob store.
func seedLocal(t *testing.T, trips []domain.Trip) (*store.TripStore, *MockBlobStore) {
	t.Helper()

	blobs := NewMockBlobStore()
	if trips != nil {
		data, err := json.Marshal(trips)
		if err != nil {
			t.Fatalf("failed to marshal seed trips: %v", err)
		}
		blobs.Seed(store.StorageKey, data)
	}

	ts := store.NewTripStore(blobs)
	if err := ts.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	return ts, blobs
}

// encodeSnapshot wraps trips in a snapshot envelope for remote seeding.
func encodeSnapshot(t *testing.T, trips []domain.Trip, now time.Time) []byte {
	t.Helper()
	data, err := codec.Encode(trips, now)
	if err != nil {
		t.Fatalf("failed to encode snapshot: %v", err)
	}
	return data
}

func TestSync_FreshSyncWithEmptyRemote_UploadsLocal(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	local := []domain.Trip{makeTrip("trip-1", "Tokyo", now)}

	trips, _ := seedLocal(t, local)
	cloud := NewMockCloudTransport()
	syncService := service.NewSyncService(trips, cloud)

	err := syncService.SyncWithCloud(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Local collection unchanged.
	got := trips.List(context.Background())
	if len(got) != 1 || got[0].ID != "trip-1" {
		t.Fatalf("expected local trip to survive, got %v", got)
	}

	// Snapshot uploaded to the default file.
	data := cloud.FileData(service.DefaultSnapshotName)
	if data == nil {
		t.Fatal("expected snapshot to be uploaded")
	}
	env, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("uploaded snapshot failed validation: %v", err)
	}
	if len(env.Trips) != 1 || env.Trips[0].ID != "trip-1" {
		t.Errorf("expected uploaded snapshot to contain trip-1, got %v", env.Trips)
	}
	if env.Version != codec.SchemaVersion {
		t.Errorf("expected version %s, got %s", codec.SchemaVersion, env.Version)
	}
}

func TestSync_RemoteNewerWins(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	localTrip := makeTrip("trip-1", "Tokyo (stale)", base)
	remoteTrip := makeTrip("trip-1", "Tokyo (fresh)", base.Add(time.Hour))

	trips, _ := seedLocal(t, []domain.Trip{localTrip})
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{remoteTrip}, base.Add(time.Hour)), base.Add(time.Hour))

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.SyncWithCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := trips.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Tokyo (fresh)" {
		t.Errorf("expected remote version to win, got title %q", got.Title)
	}
}

func TestSync_LocalNewerWins(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	localTrip := makeTrip("trip-1", "Tokyo (fresh)", base.Add(time.Hour))
	remoteTrip := makeTrip("trip-1", "Tokyo (stale)", base)

	trips, _ := seedLocal(t, []domain.Trip{localTrip})
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{remoteTrip}, base), base)

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.SyncWithCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := trips.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Tokyo (fresh)" {
		t.Errorf("expected local version to win, got title %q", got.Title)
	}

	// The winning local version is what gets uploaded back.
	env, err := codec.Decode(cloud.FileData(service.DefaultSnapshotName))
	if err != nil {
		t.Fatalf("uploaded snapshot failed validation: %v", err)
	}
	if env.Trips[0].Title != "Tokyo (fresh)" {
		t.Errorf("expected uploaded snapshot to carry the local version, got %q", env.Trips[0].Title)
	}
}

func TestSync_EqualTimestamps_KeepLocal(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	localTrip := makeTrip("trip-1", "local", base)
	remoteTrip := makeTrip("trip-1", "remote", base)

	trips, _ := seedLocal(t, []domain.Trip{localTrip})
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{remoteTrip}, base), base)

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.SyncWithCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := trips.Get(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "local" {
		t.Errorf("expected tie to keep local version, got title %q", got.Title)
	}
}

func TestSync_RemoteOnlyTripsAppended(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	localTrip := makeTrip("trip-1", "Tokyo", base)
	remoteOnly := makeTrip("trip-2", "Kyoto", base)

	trips, _ := seedLocal(t, []domain.Trip{localTrip})
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{localTrip, remoteOnly}, base), base)

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.SyncWithCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := trips.List(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 trips after merge, got %d", len(got))
	}
	// Local order is preserved, remote-only trips come after.
	if got[0].ID != "trip-1" || got[1].ID != "trip-2" {
		t.Errorf("expected [trip-1 trip-2], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestSync_MergedResultPersistedLocally(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	remoteOnly := makeTrip("trip-9", "Osaka", base)

	trips, blobs := seedLocal(t, nil)
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{remoteOnly}, base), base)

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.SyncWithCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The merged collection was written through to the blob store.
	var persisted []domain.Trip
	if err := json.Unmarshal(blobs.Blob(store.StorageKey), &persisted); err != nil {
		t.Fatalf("failed to decode persisted blob: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != "trip-9" {
		t.Errorf("expected trip-9 persisted locally, got %v", persisted)
	}
}

func TestSync_DownloadOnly_DoesNotUpload(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	remoteTrip := makeTrip("trip-1", "Tokyo", base)

	trips, _ := seedLocal(t, nil)
	cloud := NewMockCloudTransport()
	cloud.SeedFile(service.DefaultSnapshotName, encodeSnapshot(t, []domain.Trip{remoteTrip}, base), base)

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.DownloadFromCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trips.List(context.Background())) != 1 {
		t.Error("expected remote trip merged into local collection")
	}
	if cloud.UploadCallCount != 0 {
		t.Errorf("expected no upload, got %d upload calls", cloud.UploadCallCount)
	}
}

func TestSync_UploadOnly_DoesNotDownload(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Truncate(time.Second)
	localTrip := makeTrip("trip-1", "Tokyo", base)

	trips, _ := seedLocal(t, []domain.Trip{localTrip})
	cloud := NewMockCloudTransport()

	syncService := service.NewSyncService(trips, cloud)
	if err := syncService.UploadToCloud(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cloud.DownloadCallCount != 0 {
		t.Errorf("expected no download, got %d download calls", cloud.DownloadCallCount)
	}
	if cloud.FileData(service.DefaultSnapshotName) == nil {
		t.Error("expected snapshot to be uploaded")
	}
}
