// Package client is a typed HTTP client for the studio API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/internal/service"
	"bitwise74/studio-api/pkg/validators"
)

// Client talks to the studio API on behalf of one signed-in user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateProjectRequest is the payload for creating a new project.
type CreateProjectRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

// NewMedia is a media row registered without uploading, e.g. a generated asset.
type NewMedia struct {
	ProjectID *string       `json:"project_id,omitempty"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	URL       string        `json:"url"`
	Size      int64         `json:"size"`
	Duration  float64       `json:"duration"`
	Metadata  model.JSONMap `json:"metadata,omitempty"`
}

// NewClip is the payload for placing a media file on a track.
type NewClip struct {
	ProjectID   string        `json:"project_id"`
	MediaFileID *string       `json:"media_file_id,omitempty"`
	TrackNumber int           `json:"track_number"`
	TrackType   string        `json:"track_type"`
	StartTime   float64       `json:"start_time"`
	EndTime     float64       `json:"end_time"`
	TrimStart   float64       `json:"trim_start"`
	TrimEnd     float64       `json:"trim_end"`
	Properties  model.JSONMap `json:"properties,omitempty"`
}

// UploadFile is one local file of an upload selection.
type UploadFile struct {
	Name string
	Size int64
	Body io.Reader
}

func (f UploadFile) FileName() string { return f.Name }
func (f UploadFile) FileSize() int64  { return f.Size }

// UploadFailure names a file the server could not store.
type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResult is the answer of an upload. Failed is only set when some
// files were stored and some were not.
type UploadResult struct {
	Success bool              `json:"success"`
	Files   []model.MediaFile `json:"files"`
	Failed  []UploadFailure   `json:"failed"`
	Error   string            `json:"error"`
}

// ImageResult is the answer of an image generation.
type ImageResult struct {
	Success  bool   `json:"success"`
	IsDemo   bool   `json:"isDemo"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Note     string `json:"note"`
}

// VideoResult is the answer of a video generation.
type VideoResult struct {
	Success  bool    `json:"success"`
	IsDemo   bool    `json:"isDemo"`
	VideoURL string  `json:"videoUrl"`
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
	Note     string  `json:"note"`
}

// RenderResult is the answer of a render.
type RenderResult struct {
	Success   bool          `json:"success"`
	IsDemo    bool          `json:"isDemo"`
	OutputURL string        `json:"outputUrl"`
	Clips     int           `json:"clips"`
	Duration  float64       `json:"duration"` // End of the last clip, seconds
	Project   model.Project `json:"project"`
	Note      string        `json:"note"`
}

// Settings are the studio defaults served by the API.
type Settings struct {
	ClipDuration  float64  `json:"clip_duration"`
	MovieMinutes  int      `json:"movie_minutes"`
	MaxUploadSize int64    `json:"max_upload_size"`
	AllowedTypes  []string `json:"allowed_types"`
}

// Heartbeat checks that the API is up.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodHead, "/api/heartbeat", nil, nil); err != nil {
		return fmt.Errorf("client.Heartbeat: %w", err)
	}
	return nil
}

// Settings returns the clip length, movie length and upload ceiling.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.get(ctx, "/api/settings", &out); err != nil {
		return nil, fmt.Errorf("client.Settings: %w", err)
	}
	return &out, nil
}

// ListProjects returns the user's projects, most recently updated first.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.get(ctx, "/api/projects", &out); err != nil {
		return nil, fmt.Errorf("client.ListProjects: %w", err)
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*model.Project, error) {
	var p model.Project
	if err := c.post(ctx, "/api/projects", req, &p); err != nil {
		return nil, fmt.Errorf("client.CreateProject: %w", err)
	}
	return &p, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProject: %w", err)
	}
	return &p, nil
}

// UpdateProject writes a partial patch and returns the stored project.
func (c *Client) UpdateProject(ctx context.Context, id string, patch validators.ProjectPatch) (*model.Project, error) {
	var p model.Project
	if err := c.doRequest(ctx, http.MethodPatch, "/api/projects/"+url.PathEscape(id), patch, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProject: %w", err)
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteProject: %w", err)
	}
	return nil
}

func (c *Client) ListProjectMedia(ctx context.Context, projectID string) ([]model.MediaFile, error) {
	var out []model.MediaFile
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(projectID)+"/media", &out); err != nil {
		return nil, fmt.Errorf("client.ListProjectMedia: %w", err)
	}
	return out, nil
}

// ListProjectClips returns the clips of a project ordered by track, then start time.
func (c *Client) ListProjectClips(ctx context.Context, projectID string) ([]model.TimelineClip, error) {
	var out []model.TimelineClip
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(projectID)+"/clips", &out); err != nil {
		return nil, fmt.Errorf("client.ListProjectClips: %w", err)
	}
	return out, nil
}

// ListMedia returns the user's library, optionally narrowed to one type.
func (c *Client) ListMedia(ctx context.Context, mediaType string) ([]model.MediaFile, error) {
	path := "/api/media"
	if mediaType != "" {
		path += "?" + url.Values{"type": {mediaType}}.Encode()
	}

	var out []model.MediaFile
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("client.ListMedia: %w", err)
	}
	return out, nil
}

// InsertMedia registers rows in one all-or-nothing batch.
func (c *Client) InsertMedia(ctx context.Context, files []NewMedia) ([]model.MediaFile, error) {
	var out []model.MediaFile
	if err := c.post(ctx, "/api/media", map[string]any{"files": files}, &out); err != nil {
		return nil, fmt.Errorf("client.InsertMedia: %w", err)
	}
	return out, nil
}

// UploadMedia streams files as one multipart request.
func (c *Client) UploadMedia(ctx context.Context, projectID string, files ...UploadFile) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(mw, projectID, files))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/media/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("client.UploadMedia: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res UploadResult
	if err := c.send(req, &res); err != nil {
		pr.Close()
		return nil, fmt.Errorf("client.UploadMedia: %w", err)
	}
	return &res, nil
}

func writeForm(mw *multipart.Writer, projectID string, files []UploadFile) error {
	if projectID != "" {
		if err := mw.WriteField("project_id", projectID); err != nil {
			return err
		}
	}

	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, f.Body); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}

	return mw.Close()
}

// DeleteMedia deletes a media row. The server removes the stored object first.
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/media/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteMedia: %w", err)
	}
	return nil
}

// DeleteObject removes one stored object by its "<user>/<file>" key.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	parts := strings.Split(key, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}

	if err := c.doRequest(ctx, http.MethodDelete, "/api/storage/"+strings.Join(parts, "/"), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteObject: %w", err)
	}
	return nil
}

func (c *Client) CreateClip(ctx context.Context, clip NewClip) (*model.TimelineClip, error) {
	var out model.TimelineClip
	if err := c.post(ctx, "/api/clips", clip, &out); err != nil {
		return nil, fmt.Errorf("client.CreateClip: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateClip(ctx context.Context, id string, patch validators.ClipPatch) (*model.TimelineClip, error) {
	var out model.TimelineClip
	if err := c.doRequest(ctx, http.MethodPatch, "/api/clips/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, fmt.Errorf("client.UpdateClip: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteClip(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/clips/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteClip: %w", err)
	}
	return nil
}

// Tools returns the generation tool catalog.
func (c *Client) Tools(ctx context.Context) ([]service.Tool, error) {
	var out struct {
		Tools []service.Tool `json:"tools"`
	}
	if err := c.get(ctx, "/api/ai/tools", &out); err != nil {
		return nil, fmt.Errorf("client.Tools: %w", err)
	}
	return out.Tools, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt, style string) (*ImageResult, error) {
	var out ImageResult
	if err := c.post(ctx, "/api/generate/image", map[string]string{"prompt": prompt, "style": style}, &out); err != nil {
		return nil, fmt.Errorf("client.GenerateImage: %w", err)
	}
	return &out, nil
}

func (c *Client) GenerateVideo(ctx context.Context, prompt string, duration float64) (*VideoResult, error) {
	var out VideoResult
	if err := c.post(ctx, "/api/generate/video", map[string]any{"prompt": prompt, "duration": duration}, &out); err != nil {
		return nil, fmt.Errorf("client.GenerateVideo: %w", err)
	}
	return &out, nil
}

func (c *Client) Render(ctx context.Context, projectID string) (*RenderResult, error) {
	var out RenderResult
	if err := c.post(ctx, "/api/render", map[string]string{"project_id": projectID}, &out); err != nil {
		return nil, fmt.Errorf("client.Render: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error     string `json:"error"`
			RequestID string `json:"requestID"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error, RequestID: apiErr.RequestID}
		}
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && req.Method != http.MethodHead {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
