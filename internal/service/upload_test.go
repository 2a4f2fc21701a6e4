package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"bitwise74/studio-api/db"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/validators"
	"bitwise74/studio-api/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// flakyStore fails every object whose key ends in .fail
type flakyStore struct {
	storage.Store
	puts atomic.Int32
}

func (f *flakyStore) Put(ctx context.Context, key string, body io.Reader, size int64, ct string) error {
	f.puts.Add(1)
	if strings.HasSuffix(key, ".fail") {
		return errors.New("bucket unavailable")
	}

	return f.Store.Put(ctx, key, body, size, ct)
}

type upload struct {
	name string
	data []byte
}

func headers(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["files"]
}

func newUploader(t *testing.T, maxSize int64) (*Uploader, *flakyStore) {
	t.Helper()

	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	local, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)

	fs := &flakyStore{Store: local}
	return NewUploader(gdb, fs, maxSize, []string{"image/", "video/", "audio/"}, nil), fs
}

func TestUploader_Do(t *testing.T) {
	u, _ := newUploader(t, 1<<20)
	project := "p1"

	out, err := u.Do(context.Background(), "user1", &project, headers(t,
		upload{"a.png", pngBytes},
		upload{"b.PNG", pngBytes},
	))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a.png", out[0].Name)
	assert.Equal(t, "b.PNG", out[1].Name)
	for _, m := range out {
		assert.Equal(t, model.MediaImage, m.Type)
		assert.Equal(t, "user1", m.UserID)
		assert.Equal(t, &project, m.ProjectID)
		assert.True(t, strings.HasPrefix(m.URL, "http://localhost:8080/media/user1/"))
		assert.Equal(t, "image/png", m.Metadata["mime_type"])
	}
	assert.NotEqual(t, out[0].URL, out[1].URL)

	var count int64
	require.NoError(t, u.DB.Model(&model.MediaFile{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUploader_PartialFailure(t *testing.T) {
	u, _ := newUploader(t, 1<<20)

	out, err := u.Do(context.Background(), "user1", nil, headers(t,
		upload{"good.png", pngBytes},
		upload{"bad.fail", pngBytes},
		upload{"notes.txt", []byte("plain text")},
	))
	require.Error(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "good.png", out[0].Name)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, err.Error(), "bad.fail")
	assert.Contains(t, err.Error(), "notes.txt")
	assert.ErrorIs(t, err, validators.ErrFileTypeUnsupported)

	statuses := map[string]int{}
	for _, e := range errs {
		var fe *FileError
		require.ErrorAs(t, e, &fe)
		statuses[fe.Name] = fe.Status
	}
	assert.Equal(t, map[string]int{"bad.fail": 0, "notes.txt": http.StatusUnsupportedMediaType}, statuses)

	var count int64
	require.NoError(t, u.DB.Model(&model.MediaFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUploader_OversizedRejectsBeforeUpload(t *testing.T) {
	u, fs := newUploader(t, 10)

	out, err := u.Do(context.Background(), "user1", nil, headers(t,
		upload{"small.png", pngBytes[:8]},
		upload{"large.png", pngBytes},
	))
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Zero(t, fs.puts.Load())

	var oe *validators.OversizedError
	require.ErrorAs(t, err, &oe)
	require.Len(t, oe.Files, 1)
	assert.Equal(t, "large.png", oe.Files[0].Name)
	assert.EqualValues(t, len(pngBytes), oe.Files[0].Size)
}

func TestUploader_NoFiles(t *testing.T) {
	u, _ := newUploader(t, 1<<20)
	_, err := u.Do(context.Background(), "user1", nil, nil)
	assert.ErrorIs(t, err, validators.ErrNoFile)
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, model.MediaVideo, MediaType("video/mp4"))
	assert.Equal(t, model.MediaAudio, MediaType("audio/mpeg"))
	assert.Equal(t, model.MediaImage, MediaType("image/webp"))
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("12.480000\n")
	require.NoError(t, err)
	assert.InDelta(t, 12.48, d, 0.0001)

	d, err = ParseDuration("N/A")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = ParseDuration("abc")
	assert.Error(t, err)

	assert.Nil(t, NewFFprobe(""))
}

func TestPlaceholders(t *testing.T) {
	p := &Placeholders{
		StockImages:    []string{"https://img/1", "https://img/2", "https://img/3"},
		SampleVideoURL: "https://video/sample.mp4",
	}

	a := p.Image("A castle at dusk", "cinematic")
	b := p.Image("a castle at dusk ", "")
	assert.Equal(t, a.URL, b.URL)
	assert.Contains(t, p.StockImages, a.URL)

	v := p.Video("waves", 0)
	assert.Equal(t, "https://video/sample.mp4", v.URL)
	assert.Equal(t, 5.0, v.Duration)

	url, note := p.Render()
	assert.Equal(t, "https://video/sample.mp4", url)
	assert.NotEmpty(t, note)

	assert.Len(t, Tools(), 3)
}
