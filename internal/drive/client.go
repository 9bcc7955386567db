// Package drive is a minimal Google Drive v3 client for snapshot storage.
// All operations require a caller-supplied bearer token; the client never
// obtains credentials itself.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/TianyiLi/trip-schedule/internal/domain"
)

const (
	defaultAPIBaseURL    = "https://www.googleapis.com/drive/v3"
	defaultUploadBaseURL = "https://www.googleapis.com/upload/drive/v3"

	// DefaultFolderName is the fixed logical folder all snapshots live in.
	DefaultFolderName = "TripSchedule"

	folderMimeType = "application/vnd.google-apps.folder"
)

// Options configures a Client. Zero values select the production Google
// endpoints; tests point the base URLs at an httptest server.
type Options struct {
	APIBaseURL    string
	UploadBaseURL string
	FolderName    string
	HTTPClient    *http.Client
}

// Client talks to the Google Drive v3 REST API.
type Client struct {
	api        string
	upload     string
	folderName string
	http       *http.Client
}

// NewClient creates a Drive client.
func NewClient(opts Options) *Client {
	c := &Client{
		api:        opts.APIBaseURL,
		upload:     opts.UploadBaseURL,
		folderName: opts.FolderName,
		http:       opts.HTTPClient,
	}
	if c.api == "" {
		c.api = defaultAPIBaseURL
	}
	if c.upload == "" {
		c.upload = defaultUploadBaseURL
	}
	if c.folderName == "" {
		c.folderName = DefaultFolderName
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// fileList is the Drive response shape for file queries.
type fileList struct {
	Files []domain.DriveFile `json:"files"`
}

// EnsureFolder locates the snapshot folder by name, creating it when
// absent, and returns its ID. Search-then-create: a concurrent caller can
// create a duplicate folder, which is tolerated (both remain searchable).
func (c *Client) EnsureFolder(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("name='%s' and mimeType='%s'", c.folderName, folderMimeType))

	var list fileList
	if err := c.getJSON(ctx, token, c.api+"/files?"+query.Encode(), "search for folder", &list); err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].ID, nil
	}

	body, err := json.Marshal(map[string]string{
		"name":     c.folderName,
		"mimeType": folderMimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode folder metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api+"/files", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Op: "create folder", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode folder response: %w", err)
	}
	return created.ID, nil
}

// FindFile looks up a file by exact name within a folder.
// Returns an empty ID when no such file exists.
func (c *Client) FindFile(ctx context.Context, token, name, folderID string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("name='%s' and '%s' in parents", name, folderID))

	var list fileList
	if err := c.getJSON(ctx, token, c.api+"/files?"+query.Encode(), "find file", &list); err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].ID, nil
}

// Upload writes data to the named file in the folder: create when absent,
// full replace when present. There is no concurrency token; the last
// writer wins at the transport level.
func (c *Client) Upload(ctx context.Context, token, name, folderID string, data []byte) error {
	if token == "" {
		return ErrNotAuthenticated
	}

	fileID, err := c.FindFile(ctx, token, name, folderID)
	if err != nil {
		return err
	}

	metadata := map[string]any{"name": name}
	if fileID == "" {
		// Parents may only be set at creation time.
		metadata["parents"] = []string{folderID}
	}

	body, contentType, err := multipartBody(metadata, data)
	if err != nil {
		return err
	}

	endpoint := c.upload + "/files?uploadType=multipart"
	method := http.MethodPost
	if fileID != "" {
		endpoint = c.upload + "/files/" + fileID + "?uploadType=multipart"
		method = http.MethodPatch
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Op: "upload file", StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// Download fetches a file's bytes by ID.
// Returns ErrNotFound when the file no longer exists.
func (c *Client) Download(ctx context.Context, token, fileID string) ([]byte, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.api+"/files/"+fileID+"?alt=media", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: "download file", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// GetFileInfo returns metadata for the named file, or nil when it does not
// exist.
func (c *Client) GetFileInfo(ctx context.Context, token, name, folderID string) (*domain.DriveFile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	fileID, err := c.FindFile(ctx, token, name, folderID)
	if err != nil {
		return nil, err
	}
	if fileID == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("fields", "id,name,modifiedTime,size")

	var file domain.DriveFile
	if err := c.getJSON(ctx, token, c.api+"/files/"+fileID+"?"+query.Encode(), "get file info", &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListFiles returns the snapshot files in the folder, newest first.
func (c *Client) ListFiles(ctx context.Context, token, folderID string) ([]domain.DriveFile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and name contains '.json'", folderID))
	query.Set("fields", "files(id,name,modifiedTime,size)")
	query.Set("orderBy", "modifiedTime desc")

	var list fileList
	if err := c.getJSON(ctx, token, c.api+"/files?"+query.Encode(), "list files", &list); err != nil {
		return nil, err
	}
	return list.Files, nil
}

// getJSON performs an authorized GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, token, endpoint, op string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// multipartBody builds a multipart/related body with a JSON metadata part
// followed by the file content part, as the Drive upload endpoint expects.
func multipartBody(metadata map[string]any, data []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(metaPart).Encode(metadata); err != nil {
		return nil, "", err
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "application/json")
	filePart, err := w.CreatePart(fileHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := filePart.Write(data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	contentType := "multipart/related; boundary=" + w.Boundary()
	return buf, contentType, nil
}
