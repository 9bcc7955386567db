package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/codec"
	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/drive"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

// DefaultSnapshotName is the file the merge-based sync path reads and writes.
const DefaultSnapshotName = "trips.json"

// CloudTransport is the remote snapshot store consumed by the sync
// orchestrator. drive.Client is the production implementation.
type CloudTransport interface {
	EnsureFolder(ctx context.Context, token string) (string, error)
	FindFile(ctx context.Context, token, name, folderID string) (string, error)
	Upload(ctx context.Context, token, name, folderID string, data []byte) error
	Download(ctx context.Context, token, fileID string) ([]byte, error)
	ListFiles(ctx context.Context, token, folderID string) ([]domain.DriveFile, error)
	GetFileInfo(ctx context.Context, token, name, folderID string) (*domain.DriveFile, error)
}

// SyncService orchestrates cloud synchronization: download, validate,
// merge, persist locally, upload. At most one sync runs at a time; the
// syncing flag rejects concurrent attempts.
type SyncService struct {
	trips        *store.TripStore
	cloud        CloudTransport
	snapshotName string

	mu           sync.Mutex
	syncing      bool
	lastSyncTime *time.Time
	lastError    string
	autoSynced   bool // one-shot guard for sync-on-first-authenticated-load

	now func() time.Time
}

// NewSyncService creates a new SyncService.
func NewSyncService(trips *store.TripStore, cloud CloudTransport) *SyncService {
	return &SyncService{
		trips:        trips,
		cloud:        cloud,
		snapshotName: DefaultSnapshotName,
		now:          time.Now,
	}
}

// Status returns the current sync status snapshot.
func (s *SyncService) Status() domain.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.SyncStatus{Syncing: s.syncing, Error: s.lastError}
	if s.lastSyncTime != nil {
		t := *s.lastSyncTime
		status.LastSyncTime = &t
	}
	return status
}

// SyncWithCloud runs the full merge-based sync sequence: download the
// snapshot (absent is an empty collection, not an error), validate, merge
// with the local collection, persist the merged result locally, then
// re-encode and upload it.
//
// The local save happens before the upload: an upload failure leaves the
// local store holding the merged state and only the remote copy stale.
func (s *SyncService) SyncWithCloud(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := s.beginSync(); err != nil {
		return err
	}

	err := s.runSync(ctx, token)
	s.endSync(err)
	return err
}

func (s *SyncService) runSync(ctx context.Context, token string) error {
	remote, folderID, err := s.downloadSnapshot(ctx, token, s.snapshotName)
	if err != nil {
		return err
	}

	merged := MergeTrips(s.trips.List(ctx), remote)
	if err := s.trips.ReplaceAll(ctx, merged); err != nil {
		return err
	}

	data, err := codec.Encode(merged, s.now())
	if err != nil {
		return err
	}
	return s.cloud.Upload(ctx, token, s.snapshotName, folderID, data)
}

// UploadToCloud serializes the current local collection and overwrites the
// default remote snapshot, without downloading or merging first.
func (s *SyncService) UploadToCloud(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := s.beginSync(); err != nil {
		return err
	}

	err := s.uploadSnapshot(ctx, token, s.snapshotName)
	s.endSync(err)
	return err
}

// DownloadFromCloud downloads the default snapshot and merges it into the
// local collection, without uploading the result back.
func (s *SyncService) DownloadFromCloud(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := s.beginSync(); err != nil {
		return err
	}

	err := s.runDownload(ctx, token)
	s.endSync(err)
	return err
}

func (s *SyncService) runDownload(ctx context.Context, token string) error {
	remote, _, err := s.downloadSnapshot(ctx, token, s.snapshotName)
	if err != nil {
		return err
	}
	merged := MergeTrips(s.trips.List(ctx), remote)
	return s.trips.ReplaceAll(ctx, merged)
}

// BackupToFile serializes the current local collection to a named remote
// file, creating or fully replacing it. The merge path is bypassed.
func (s *SyncService) BackupToFile(ctx context.Context, token, fileName string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if fileName == "" {
		return ErrInvalidFileName
	}
	return s.uploadSnapshot(ctx, token, fileName)
}

// RestoreFromFile decodes a named remote snapshot and wholesale-replaces
// the local collection with it. This discards local state, so the caller
// must pass confirm=true; without it nothing is touched.
func (s *SyncService) RestoreFromFile(ctx context.Context, token, fileName string, confirm bool) ([]domain.Trip, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	if fileName == "" {
		return nil, ErrInvalidFileName
	}
	if !confirm {
		return nil, ErrRestoreNotConfirmed
	}

	remote, _, err := s.downloadSnapshot(ctx, token, fileName)
	if err != nil {
		return nil, err
	}
	if err := s.trips.ReplaceAll(ctx, remote); err != nil {
		return nil, err
	}
	return remote, nil
}

// ListBackupFiles lists the snapshot files in the remote folder, newest
// first.
func (s *SyncService) ListBackupFiles(ctx context.Context, token string) ([]domain.DriveFile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	folderID, err := s.cloud.EnsureFolder(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.cloud.ListFiles(ctx, token, folderID)
}

// BackupFileInfo returns metadata for a named remote snapshot, or nil when
// the file does not exist.
func (s *SyncService) BackupFileInfo(ctx context.Context, token, fileName string) (*domain.DriveFile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	if fileName == "" {
		fileName = s.snapshotName
	}
	folderID, err := s.cloud.EnsureFolder(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.cloud.GetFileInfo(ctx, token, fileName, folderID)
}

// AutoSyncOnLoad triggers the one-shot sync on first authenticated load.
// It fires only when local trips exist, no sync is running, and it has not
// already fired this session. The guard is consumed only when all
// conditions hold: a load with nothing local to reconcile leaves it armed
// for a later load in the same session. Failures are logged, not
// surfaced: the user can always sync manually.
func (s *SyncService) AutoSyncOnLoad(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if len(s.trips.List(ctx)) == 0 {
		return
	}

	s.mu.Lock()
	if s.autoSynced || s.syncing {
		s.mu.Unlock()
		return
	}
	s.autoSynced = true
	s.mu.Unlock()

	if err := s.SyncWithCloud(ctx, token); err != nil {
		log.Printf("auto-sync failed: %v", err)
	}
}

// EndSession resets the per-session auto-sync guard. Called when the
// authenticated session ends.
func (s *SyncService) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSynced = false
}

// beginSync transitions idle -> syncing, rejecting concurrent attempts.
func (s *SyncService) beginSync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncing {
		return ErrSyncInProgress
	}
	s.syncing = true
	s.lastError = ""
	return nil
}

// endSync records the outcome of a sync attempt.
func (s *SyncService) endSync(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncing = false
	if err != nil {
		s.lastError = err.Error()
		return
	}
	now := s.now()
	s.lastSyncTime = &now
	s.lastError = ""
}

// downloadSnapshot fetches and validates a named snapshot. A missing file,
// or one deleted between lookup and fetch, yields an empty collection. A
// snapshot that fails validation is an error; it never reaches the local
// store.
func (s *SyncService) downloadSnapshot(ctx context.Context, token, fileName string) ([]domain.Trip, string, error) {
	folderID, err := s.cloud.EnsureFolder(ctx, token)
	if err != nil {
		return nil, "", err
	}

	fileID, err := s.cloud.FindFile(ctx, token, fileName, folderID)
	if err != nil {
		return nil, "", err
	}
	if fileID == "" {
		return []domain.Trip{}, folderID, nil
	}

	data, err := s.cloud.Download(ctx, token, fileID)
	if err != nil {
		if errors.Is(err, drive.ErrNotFound) {
			return []domain.Trip{}, folderID, nil
		}
		return nil, "", err
	}

	env, err := codec.Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot %q: %w", fileName, err)
	}
	return env.Trips, folderID, nil
}

// uploadSnapshot encodes the current local collection and writes it to a
// named remote file.
func (s *SyncService) uploadSnapshot(ctx context.Context, token, fileName string) error {
	folderID, err := s.cloud.EnsureFolder(ctx, token)
	if err != nil {
		return err
	}

	data, err := codec.Encode(s.trips.List(ctx), s.now())
	if err != nil {
		return err
	}
	return s.cloud.Upload(ctx, token, fileName, folderID, data)
}
