package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bitwise74/studio-api/app"
	"bitwise74/studio-api/config"
	"bitwise74/studio-api/db"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/internal/service"
	"bitwise74/studio-api/pkg/validators"
	"bitwise74/studio-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProject_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not signed in", "requestID": "abc"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-token")
	_, err := c.GetProject(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "HTTP 401: Not signed in (request abc)")
}

func TestDeleteMedia_Retryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/media/m1", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "bucket down") //nolint:errcheck
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").DeleteMedia(context.Background(), "m1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "bucket down")
}

func TestBearerHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		json.NewEncoder(w).Encode([]model.MediaFile{{ID: "m1", Type: "video"}}) //nolint:errcheck
	}))
	defer srv.Close()

	files, err := New(srv.URL+"/", "test-token").ListMedia(context.Background(), "video")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "m1", files[0].ID)
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// apiServer runs the real router over a temporary database and folder.
func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Reset()
	config.SetDefaults()
	viper.Set("jwt.secret", "secret")

	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	local, err := storage.NewLocal(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	srv := httptest.NewServer(app.Routes(&internal.Deps{
		DB:       gdb,
		Store:    local,
		Uploader: service.NewUploader(gdb, local, 1<<20, viper.GetStringSlice("upload.allowed_types"), nil),
		Placeholders: &service.Placeholders{
			StockImages:    viper.GetStringSlice("demo.stock_images"),
			SampleVideoURL: viper.GetString("demo.sample_video_url"),
		},
	}))
	t.Cleanup(srv.Close)

	return srv
}

func userToken(t *testing.T, userID string) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestAgainstAPI(t *testing.T) {
	srv := apiServer(t)
	c := New(srv.URL, userToken(t, "u1"))
	ctx := context.Background()

	require.NoError(t, c.Heartbeat(ctx))

	set, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, set.ClipDuration)
	assert.Equal(t, 5, set.MovieMinutes)
	assert.Equal(t, viper.GetInt64("upload.max_size"), set.MaxUploadSize)

	p, err := c.CreateProject(ctx, CreateProjectRequest{Name: "My Movie"})
	require.NoError(t, err)
	assert.Equal(t, model.RenderDraft, p.RenderStatus)

	name := "Director's cut"
	p, err = c.UpdateProject(ctx, p.ID, validators.ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)

	res, err := c.UploadMedia(ctx, p.ID,
		UploadFile{Name: "a.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)},
		UploadFile{Name: "b.txt", Size: 4, Body: strings.NewReader("text")},
	)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "b.txt", res.Failed[0].Name)

	media, err := c.ListProjectMedia(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, media, 1)

	mediaID := media[0].ID
	clip, err := c.CreateClip(ctx, NewClip{ProjectID: p.ID, MediaFileID: &mediaID, TrackNumber: 1, TrackType: "video", StartTime: 0, EndTime: 5})
	require.NoError(t, err)

	start, end := 5.0, 10.0
	clip, err = c.UpdateClip(ctx, clip.ID, validators.ClipPatch{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, 5.0, clip.StartTime)

	clips, err := c.ListProjectClips(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, clips, 1)

	key, err := storage.KeyFromURL(media[0].URL)
	require.NoError(t, err)
	require.NoError(t, c.DeleteObject(ctx, key))
	require.NoError(t, c.DeleteMedia(ctx, mediaID))
	require.NoError(t, c.DeleteClip(ctx, clip.ID))

	ai, err := c.InsertMedia(ctx, []NewMedia{{Name: "gen.png", Type: model.MediaAI, URL: "https://images.example.com/gen"}})
	require.NoError(t, err)
	require.Len(t, ai, 1)

	tools, err := c.Tools(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tools)

	img, err := c.GenerateImage(ctx, "a castle", "")
	require.NoError(t, err)
	assert.True(t, img.IsDemo)

	vid, err := c.GenerateVideo(ctx, "waves", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, vid.Duration)

	r, err := c.Render(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RenderCompleted, r.Project.RenderStatus)

	require.NoError(t, c.DeleteProject(ctx, p.ID))
	_, err = c.GetProject(ctx, p.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	other := New(srv.URL, userToken(t, "u2"))
	projects, err := other.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
