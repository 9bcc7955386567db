package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TianyiLi/trip-schedule/internal/middleware"
	"github.com/TianyiLi/trip-schedule/internal/service"
)

// SyncHandler handles HTTP requests for cloud synchronization.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// BackupRequest is the request body for backing up to a named file.
type BackupRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

// RestoreRequest is the request body for restoring from a named file.
// Confirm must be true: a restore discards the local collection.
type RestoreRequest struct {
	FileName string `json:"fileName" binding:"required"`
	Confirm  bool   `json:"confirm"`
}

// StatusResponse reports the sync state to the caller.
type StatusResponse struct {
	Syncing      bool   `json:"syncing"`
	LastSyncTime string `json:"lastSyncTime,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Sync handles POST /v1/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	if err := h.syncService.SyncWithCloud(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.statusResponse())
}

// Upload handles POST /v1/sync/upload
func (h *SyncHandler) Upload(c *gin.Context) {
	if err := h.syncService.UploadToCloud(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.statusResponse())
}

// Download handles POST /v1/sync/download
func (h *SyncHandler) Download(c *gin.Context) {
	if err := h.syncService.DownloadFromCloud(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.statusResponse())
}

// Status handles GET /v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusResponse())
}

// Files handles GET /v1/sync/files
func (h *SyncHandler) Files(c *gin.Context) {
	files, err := h.syncService.ListBackupFiles(c.Request.Context(), middleware.AccessToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// FileInfo handles GET /v1/sync/files/info?name=
func (h *SyncHandler) FileInfo(c *gin.Context) {
	info, err := h.syncService.BackupFileInfo(c.Request.Context(), middleware.AccessToken(c), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Backup handles POST /v1/sync/backup
func (h *SyncHandler) Backup(c *gin.Context) {
	var req BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.syncService.BackupToFile(c.Request.Context(), middleware.AccessToken(c), req.FileName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileName": req.FileName})
}

// Restore handles POST /v1/sync/restore
func (h *SyncHandler) Restore(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trips, err := h.syncService.RestoreFromFile(c.Request.Context(), middleware.AccessToken(c), req.FileName, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileName": req.FileName, "restored": len(trips)})
}

// AutoSync handles POST /v1/sync/auto, the one-shot sync on first
// authenticated load. It always returns the current status; failures are
// reflected there rather than in the response code.
func (h *SyncHandler) AutoSync(c *gin.Context) {
	h.syncService.AutoSyncOnLoad(c.Request.Context(), middleware.AccessToken(c))
	c.JSON(http.StatusOK, h.statusResponse())
}

// EndSession handles POST /v1/sync/session/end, called when the
// authenticated session ends so the next login can auto-sync again.
func (h *SyncHandler) EndSession(c *gin.Context) {
	h.syncService.EndSession()
	c.Status(http.StatusNoContent)
}

func (h *SyncHandler) statusResponse() StatusResponse {
	status := h.syncService.Status()
	resp := StatusResponse{Syncing: status.Syncing, Error: status.Error}
	if status.LastSyncTime != nil {
		resp.LastSyncTime = status.LastSyncTime.UTC().Format(time.RFC3339)
	}
	return resp
}
