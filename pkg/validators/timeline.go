package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"bitwise74/studio-api/internal/model"
)

var (
	ErrEmptyName         = errors.New("name can't be empty")
	ErrInvalidStatus     = errors.New("invalid render status")
	ErrInvalidTrackType  = errors.New("invalid track type")
	ErrInvalidTrack      = errors.New("track number must be 1 or bigger")
	ErrNegativeTime      = errors.New("times can't be negative")
	ErrInvalidTimeRange  = errors.New("start_time must be smaller than end_time")
	ErrInvalidDuration   = errors.New("duration can't be negative")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrInvalidMediaType  = errors.New("invalid media type")
	ErrMissingProjectID  = errors.New("project_id is required")
	ErrMissingMediaURL   = errors.New("url is required")
	ErrEmptyMediaBatch   = errors.New("no media files provided")
	ErrMediaBatchTooLong = errors.New("too many media files in one request")
)

const MaxMediaBatch = 100

// ProjectPatch holds the fields a client may change on a project
type ProjectPatch struct {
	Name            *string       `json:"name,omitempty"`
	Description     *string       `json:"description,omitempty"`
	TimelineData    model.JSONMap `json:"timeline_data,omitempty"`
	RenderStatus    *string       `json:"render_status,omitempty"`
	OutputURL       *string       `json:"output_url,omitempty"`
	DurationSeconds *int          `json:"duration_seconds,omitempty"`
}

// Empty reports whether the patch would change nothing
func (p *ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.TimelineData == nil &&
		p.RenderStatus == nil && p.OutputURL == nil && p.DurationSeconds == nil
}

// Updates converts the patch into a gorm column map
func (p *ProjectPatch) Updates() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.TimelineData != nil {
		m["timeline_data"] = p.TimelineData
	}
	if p.RenderStatus != nil {
		m["render_status"] = *p.RenderStatus
	}
	if p.OutputURL != nil {
		m["output_url"] = *p.OutputURL
	}
	if p.DurationSeconds != nil {
		m["duration_seconds"] = *p.DurationSeconds
	}

	return m
}

// Apply writes the patch onto an in-memory project
func (p *ProjectPatch) Apply(pr *model.Project) {
	if p.Name != nil {
		pr.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.TimelineData != nil {
		pr.TimelineData = p.TimelineData.Clone()
	}
	if p.RenderStatus != nil {
		pr.RenderStatus = *p.RenderStatus
	}
	if p.OutputURL != nil {
		u := *p.OutputURL
		pr.OutputURL = &u
	}
	if p.DurationSeconds != nil {
		pr.DurationSeconds = *p.DurationSeconds
	}
}

func ProjectPatchValidator(p *ProjectPatch) (int, error) {
	if p.Empty() {
		return http.StatusBadRequest, ErrNoFieldsToUpdate
	}

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return http.StatusBadRequest, ErrEmptyName
	}

	if p.RenderStatus != nil && !slices.Contains(model.RenderStatuses, *p.RenderStatus) {
		return http.StatusBadRequest, ErrInvalidStatus
	}

	if p.DurationSeconds != nil && *p.DurationSeconds < 0 {
		return http.StatusBadRequest, ErrInvalidDuration
	}

	return 0, nil
}

// ClipPatch holds the fields a client may change on a timeline clip.
// Sending "media_file_id": null detaches the clip from its media file and
// "properties": null clears its properties
type ClipPatch struct {
	MediaFileID *string       `json:"media_file_id,omitempty"`
	TrackNumber *int          `json:"track_number,omitempty"`
	TrackType   *string       `json:"track_type,omitempty"`
	StartTime   *float64      `json:"start_time,omitempty"`
	EndTime     *float64      `json:"end_time,omitempty"`
	TrimStart   *float64      `json:"trim_start,omitempty"`
	TrimEnd     *float64      `json:"trim_end,omitempty"`
	Properties  model.JSONMap `json:"properties,omitempty"`

	ClearMediaFile  bool `json:"-"`
	ClearProperties bool `json:"-"`
}

// clipPatchFields has the fields of ClipPatch without its JSON methods
type clipPatchFields ClipPatch

var jsonNull = []byte("null")

func (p *ClipPatch) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var f clipPatchFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}

	*p = ClipPatch(f)
	p.ClearMediaFile = isNull(raw, "media_file_id")
	p.ClearProperties = isNull(raw, "properties")

	return nil
}

func (p ClipPatch) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(clipPatchFields(p))
	if err != nil || (!p.ClearMediaFile && !p.ClearProperties) {
		return b, err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	if p.ClearMediaFile {
		m["media_file_id"] = nil
	}
	if p.ClearProperties {
		m["properties"] = nil
	}

	return json.Marshal(m)
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && bytes.Equal(bytes.TrimSpace(v), jsonNull)
}

func (p *ClipPatch) Empty() bool {
	return p.MediaFileID == nil && p.TrackNumber == nil && p.TrackType == nil && p.StartTime == nil &&
		p.EndTime == nil && p.TrimStart == nil && p.TrimEnd == nil && p.Properties == nil &&
		!p.ClearMediaFile && !p.ClearProperties
}

// Apply writes the patch onto a clip
func (p *ClipPatch) Apply(c *model.TimelineClip) {
	if p.ClearMediaFile {
		c.MediaFileID = nil
	}
	if p.MediaFileID != nil {
		id := *p.MediaFileID
		c.MediaFileID = &id
	}
	if p.TrackNumber != nil {
		c.TrackNumber = *p.TrackNumber
	}
	if p.TrackType != nil {
		c.TrackType = *p.TrackType
	}
	if p.StartTime != nil {
		c.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		c.EndTime = *p.EndTime
	}
	if p.TrimStart != nil {
		c.TrimStart = *p.TrimStart
	}
	if p.TrimEnd != nil {
		c.TrimEnd = *p.TrimEnd
	}
	if p.ClearProperties {
		c.Properties = model.JSONMap{}
	}
	if p.Properties != nil {
		c.Properties = p.Properties.Clone()
	}
}

// ClipValidator checks a complete clip. Overlap with other clips on the
// same track is not checked
func ClipValidator(c *model.TimelineClip) (int, error) {
	if c.ProjectID == "" {
		return http.StatusBadRequest, ErrMissingProjectID
	}

	if c.TrackNumber < 1 {
		return http.StatusBadRequest, ErrInvalidTrack
	}

	if !slices.Contains(model.TrackTypes, c.TrackType) {
		return http.StatusBadRequest, ErrInvalidTrackType
	}

	if c.StartTime < 0 || c.EndTime < 0 || c.TrimStart < 0 || c.TrimEnd < 0 {
		return http.StatusBadRequest, ErrNegativeTime
	}

	if c.StartTime >= c.EndTime {
		return http.StatusBadRequest, ErrInvalidTimeRange
	}

	return 0, nil
}

// MediaValidator checks a media row registered without an upload, e.g.
// a generated asset
func MediaValidator(m *model.MediaFile) (int, error) {
	if strings.TrimSpace(m.Name) == "" {
		return http.StatusBadRequest, ErrEmptyName
	}

	if m.URL == "" {
		return http.StatusBadRequest, ErrMissingMediaURL
	}

	if !slices.Contains(model.MediaTypes, m.Type) {
		return http.StatusBadRequest, ErrInvalidMediaType
	}

	if m.Size < 0 || m.Duration < 0 {
		return http.StatusBadRequest, ErrInvalidDuration
	}

	return 0, nil
}
