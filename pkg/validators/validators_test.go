package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitwise74/studio-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sized struct {
	name string
	size int64
}

func (s sized) FileName() string { return s.name }
func (s sized) FileSize() int64  { return s.size }

func TestCheckSizes(t *testing.T) {
	const limit = 100 << 20

	files := []sized{
		{"ok.mp4", 10 << 20},
		{"big.mp4", 101 << 20},
		{"exact.mp4", limit},
		{"huge.mov", 2 << 30},
	}

	over := CheckSizes(files, limit)
	require.Len(t, over, 2)
	assert.Equal(t, Oversized{Name: "big.mp4", Size: 101 << 20}, over[0])
	assert.Equal(t, "huge.mov", over[1].Name)

	err := CheckSelection(files, limit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Contains(t, err.Error(), "big.mp4 (101.0 MB)")
	assert.Contains(t, err.Error(), "100 MB limit")

	assert.NoError(t, CheckSelection(files[:1], limit))
}

func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["files"][0]
}

// Smallest valid PNG header
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFileValidator(t *testing.T) {
	allowed := []string{"image/", "video/", "audio/"}

	fh := formFile(t, "pic.png", pngBytes)
	code, f, mime, err := FileValidator(fh, 1<<20, allowed)
	require.NoError(t, err)
	defer f.Close()
	assert.Zero(t, code)
	assert.Equal(t, "image/png", mime)

	fh = formFile(t, "notes.txt", []byte("hello there"))
	code, _, _, err = FileValidator(fh, 1<<20, allowed)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
	assert.Equal(t, http.StatusUnsupportedMediaType, code)

	fh = formFile(t, "pic.png", pngBytes)
	code, _, _, err = FileValidator(fh, 4, allowed)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)

	code, _, _, err = FileValidator(nil, 1, allowed)
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMimeAllowed(t *testing.T) {
	assert.True(t, MimeAllowed("video/mp4", []string{"video/"}))
	assert.False(t, MimeAllowed("text/plain", []string{"video/", "image/"}))
	assert.True(t, MimeAllowed("text/plain", nil))
}

func ptr[T any](v T) *T { return &v }

func TestProjectPatchValidator(t *testing.T) {
	cases := []struct {
		name  string
		patch ProjectPatch
		err   error
	}{
		{"empty", ProjectPatch{}, ErrNoFieldsToUpdate},
		{"blank name", ProjectPatch{Name: ptr("  ")}, ErrEmptyName},
		{"bad status", ProjectPatch{RenderStatus: ptr("queued")}, ErrInvalidStatus},
		{"negative duration", ProjectPatch{DurationSeconds: ptr(-1)}, ErrInvalidDuration},
		{"ok", ProjectPatch{RenderStatus: ptr(model.RenderRendering), DurationSeconds: ptr(300)}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProjectPatchValidator(&tc.patch)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestProjectPatch_Apply(t *testing.T) {
	p := model.Project{Name: "Old", RenderStatus: model.RenderDraft}
	patch := ProjectPatch{Name: ptr(" New "), OutputURL: ptr("https://x/y.mp4")}
	patch.Apply(&p)

	assert.Equal(t, "New", p.Name)
	assert.Equal(t, model.RenderDraft, p.RenderStatus)
	require.NotNil(t, p.OutputURL)
	assert.Equal(t, "https://x/y.mp4", *p.OutputURL)

	u := patch.Updates()
	assert.Equal(t, "New", u["name"])
	assert.NotContains(t, u, "render_status")
}

func TestClipValidator(t *testing.T) {
	valid := func() model.TimelineClip {
		return model.TimelineClip{ProjectID: "p1", TrackNumber: 1, TrackType: model.TrackVideo, StartTime: 0, EndTime: 5}
	}

	c := valid()
	_, err := ClipValidator(&c)
	assert.NoError(t, err)

	c = valid()
	c.TrackNumber = 0
	_, err = ClipValidator(&c)
	assert.ErrorIs(t, err, ErrInvalidTrack)

	c = valid()
	c.TrackType = "subtitle"
	_, err = ClipValidator(&c)
	assert.ErrorIs(t, err, ErrInvalidTrackType)

	c = valid()
	c.StartTime, c.EndTime = 5, 5
	_, err = ClipValidator(&c)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	c = valid()
	c.TrimStart = -1
	_, err = ClipValidator(&c)
	assert.ErrorIs(t, err, ErrNegativeTime)

	c = valid()
	c.ProjectID = ""
	_, err = ClipValidator(&c)
	assert.ErrorIs(t, err, ErrMissingProjectID)
}

func TestClipPatch_Apply(t *testing.T) {
	c := model.TimelineClip{TrackNumber: 1, StartTime: 0, EndTime: 5}
	patch := ClipPatch{StartTime: ptr(10.0), EndTime: ptr(15.0), TrackNumber: ptr(2)}
	patch.Apply(&c)

	assert.Equal(t, 2, c.TrackNumber)
	assert.Equal(t, 10.0, c.StartTime)
	assert.Equal(t, 15.0, c.EndTime)
	assert.True(t, (&ClipPatch{}).Empty())
}

func TestClipPatch_NullClears(t *testing.T) {
	var patch ClipPatch
	require.NoError(t, json.Unmarshal([]byte(`{"media_file_id": null, "properties": null, "start_time": 2}`), &patch))

	assert.True(t, patch.ClearMediaFile)
	assert.True(t, patch.ClearProperties)
	assert.False(t, patch.Empty())

	mf := "m1"
	c := model.TimelineClip{MediaFileID: &mf, Properties: model.JSONMap{"volume": 0.5}}
	patch.Apply(&c)

	assert.Nil(t, c.MediaFileID)
	assert.Empty(t, c.Properties)
	assert.Equal(t, 2.0, c.StartTime)

	// An absent key leaves the field alone
	var none ClipPatch
	require.NoError(t, json.Unmarshal([]byte(`{"track_number": 3}`), &none))
	assert.False(t, none.ClearMediaFile)
	assert.False(t, none.ClearProperties)

	var only ClipPatch
	require.NoError(t, json.Unmarshal([]byte(`{"media_file_id": null}`), &only))
	assert.False(t, only.Empty())
}

func TestClipPatch_MarshalKeepsNulls(t *testing.T) {
	b, err := json.Marshal(ClipPatch{ClearMediaFile: true, TrackNumber: ptr(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"media_file_id": null, "track_number": 2}`, string(b))

	var back ClipPatch
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.ClearMediaFile)
	assert.False(t, back.ClearProperties)
	assert.Equal(t, 2, *back.TrackNumber)

	b, err = json.Marshal(ClipPatch{StartTime: ptr(1.0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_time": 1}`, string(b))
}

func TestMediaValidator(t *testing.T) {
	m := model.MediaFile{Name: "gen.png", URL: "https://x/gen.png", Type: model.MediaAI}
	_, err := MediaValidator(&m)
	assert.NoError(t, err)

	m.Type = "document"
	_, err = MediaValidator(&m)
	assert.ErrorIs(t, err, ErrInvalidMediaType)

	m.Type, m.URL = model.MediaImage, ""
	_, err = MediaValidator(&m)
	assert.ErrorIs(t, err, ErrMissingMediaURL)
}
