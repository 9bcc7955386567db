package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK BLOB STORE
// ──────────────────────────────────────────────

// MockBlobStore is an in-memory implementation of repository.BlobStore.
type MockBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// Counters for verification
	GetCallCount int32
	PutCallCount int32

	// Error injection
	GetError error
	PutError error
}

// NewMockBlobStore creates a new mock blob store.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		blobs: make(map[string][]byte),
	}
}

// Seed stores a blob directly (for test setup).
func (m *MockBlobStore) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
}

func (m *MockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MockBlobStore) Put(ctx context.Context, key string, data []byte) error {
	atomic.AddInt32(&m.PutCallCount, 1)
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Blob returns the stored blob for assertions.
func (m *MockBlobStore) Blob(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blobs[key]
}

// ──────────────────────────────────────────────
// MOCK CLOUD TRANSPORT
// ──────────────────────────────────────────────

// cloudFile is a stored remote file.
type cloudFile struct {
	id       string
	name     string
	data     []byte
	modified time.Time
}

// MockCloudTransport is an in-memory implementation of service.CloudTransport.
type MockCloudTransport struct {
	mu    sync.RWMutex
	files map[string]*cloudFile // keyed by name

	// Counters for verification
	EnsureFolderCallCount int32
	FindFileCallCount     int32
	UploadCallCount       int32
	DownloadCallCount     int32
	ListFilesCallCount    int32
	GetFileInfoCallCount  int32

	// Error injection
	EnsureFolderError error
	FindFileError     error
	UploadError       error
	DownloadError     error
	ListFilesError    error
	GetFileInfoError  error

	// DownloadStarted and DownloadRelease coordinate concurrency tests.
	// When set, Download signals DownloadStarted then blocks on
	// DownloadRelease.
	DownloadStarted chan struct{}
	DownloadRelease chan struct{}
}

// NewMockCloudTransport creates a new mock cloud transport.
func NewMockCloudTransport() *MockCloudTransport {
	return &MockCloudTransport{
		files: make(map[string]*cloudFile),
	}
}

// SeedFile stores a remote file directly (for test setup).
func (m *MockCloudTransport) SeedFile(name string, data []byte, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = &cloudFile{
		id:       "file-" + name,
		name:     name,
		data:     data,
		modified: modified,
	}
}

func (m *MockCloudTransport) EnsureFolder(ctx context.Context, token string) (string, error) {
	atomic.AddInt32(&m.EnsureFolderCallCount, 1)
	if m.EnsureFolderError != nil {
		return "", m.EnsureFolderError
	}
	return "folder-1", nil
}

func (m *MockCloudTransport) FindFile(ctx context.Context, token, name, folderID string) (string, error) {
	atomic.AddInt32(&m.FindFileCallCount, 1)
	if m.FindFileError != nil {
		return "", m.FindFileError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return "", nil
	}
	return f.id, nil
}

func (m *MockCloudTransport) Upload(ctx context.Context, token, name, folderID string, data []byte) error {
	atomic.AddInt32(&m.UploadCallCount, 1)
	if m.UploadError != nil {
		return m.UploadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	if f, ok := m.files[name]; ok {
		f.data = stored
		f.modified = time.Now()
		return nil
	}
	m.files[name] = &cloudFile{
		id:       "file-" + name,
		name:     name,
		data:     stored,
		modified: time.Now(),
	}
	return nil
}

func (m *MockCloudTransport) Download(ctx context.Context, token, fileID string) ([]byte, error) {
	atomic.AddInt32(&m.DownloadCallCount, 1)
	if m.DownloadStarted != nil {
		select {
		case m.DownloadStarted <- struct{}{}:
			<-m.DownloadRelease
		case <-m.DownloadRelease:
			// Release already granted: later downloads proceed without
			// re-signaling the one-shot DownloadStarted handshake.
		}
	}
	if m.DownloadError != nil {
		return nil, m.DownloadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.id == fileID {
			out := make([]byte, len(f.data))
			copy(out, f.data)
			return out, nil
		}
	}
	return nil, errors.New("mock: file not found")
}

func (m *MockCloudTransport) ListFiles(ctx context.Context, token, folderID string) ([]domain.DriveFile, error) {
	atomic.AddInt32(&m.ListFilesCallCount, 1)
	if m.ListFilesError != nil {
		return nil, m.ListFilesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]domain.DriveFile, 0, len(m.files))
	for _, f := range m.files {
		result = append(result, domain.DriveFile{
			ID:           f.id,
			Name:         f.name,
			ModifiedTime: f.modified.Format(time.RFC3339),
			Size:         int64(len(f.data)),
		})
	}
	return result, nil
}

func (m *MockCloudTransport) GetFileInfo(ctx context.Context, token, name, folderID string) (*domain.DriveFile, error) {
	atomic.AddInt32(&m.GetFileInfoCallCount, 1)
	if m.GetFileInfoError != nil {
		return nil, m.GetFileInfoError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, nil
	}
	return &domain.DriveFile{
		ID:           f.id,
		Name:         f.name,
		ModifiedTime: f.modified.Format(time.RFC3339),
		Size:         int64(len(f.data)),
	}, nil
}

// FileData returns the stored remote file contents for assertions.
func (m *MockCloudTransport) FileData(name string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil
	}
	return f.data
}

// CountFiles returns the number of remote files.
func (m *MockCloudTransport) CountFiles() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockStorage = errors.New("mock: storage unavailable")
	ErrMockNetwork = errors.New("mock: network unreachable")
)
