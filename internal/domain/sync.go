package domain

import "time"

// SyncStatus is the ephemeral state of the cloud sync subsystem.
// It is never persisted. Syncing=true suppresses concurrent sync attempts.
type SyncStatus struct {
	Syncing      bool       `json:"syncing"`
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// DriveFile describes a snapshot file stored in the remote folder.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
	Size         int64  `json:"size,string"`
}
