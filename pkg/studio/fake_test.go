package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/client"
	"bitwise74/studio-api/pkg/timeline"
	"bitwise74/studio-api/pkg/validators"
)

var errRemote = errors.New("remote unavailable")

// fakeBackend keeps everything in memory. Calls named in fail return
// that error without touching state
type fakeBackend struct {
	mu    sync.Mutex
	seq   int
	user  string
	fail  map[string]error
	calls map[string]int

	settings  client.Settings
	clipDelay time.Duration

	projects map[string]model.Project
	media    map[string]model.MediaFile
	clips    map[string]model.TimelineClip
	objects  map[string]bool
}

func newFake(user string) *fakeBackend {
	return &fakeBackend{
		user:     user,
		settings: client.Settings{ClipDuration: timeline.FixedClipDuration, MovieMinutes: 5, MaxUploadSize: 100 << 20},
		fail:     map[string]error{},
		calls:    map[string]int{},
		projects: map[string]model.Project{},
		media:    map[string]model.MediaFile{},
		clips:    map[string]model.TimelineClip{},
		objects:  map[string]bool{},
	}
}

func (f *fakeBackend) enter(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[name]++
	return f.fail[name]
}

func (f *fakeBackend) setFail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// Caller holds the lock
func (f *fakeBackend) id(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeBackend) Settings(context.Context) (*client.Settings, error) {
	if err := f.enter("Settings"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.settings
	return &set, nil
}

func (f *fakeBackend) ListProjects(context.Context) ([]model.Project, error) {
	if err := f.enter("ListProjects"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Project{}
	for _, p := range f.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.Project) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (f *fakeBackend) CreateProject(_ context.Context, req client.CreateProjectRequest) (*model.Project, error) {
	if err := f.enter("CreateProject"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	p := model.Project{
		ID:           f.id("p"),
		UserID:       f.user,
		Name:         req.Name,
		Description:  req.Description,
		TimelineData: model.JSONMap{},
		RenderStatus: model.RenderDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.DurationSeconds != nil {
		p.DurationSeconds = *req.DurationSeconds
	}
	f.projects[p.ID] = p
	return &p, nil
}

func (f *fakeBackend) GetProject(_ context.Context, id string) (*model.Project, error) {
	if err := f.enter("GetProject"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.projects[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: 404, Message: "Project not found"}
	}
	return &p, nil
}

func (f *fakeBackend) UpdateProject(_ context.Context, id string, patch validators.ProjectPatch) (*model.Project, error) {
	if err := f.enter("UpdateProject"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.projects[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: 404, Message: "Project not found"}
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now()
	f.projects[id] = p
	return &p, nil
}

func (f *fakeBackend) DeleteProject(_ context.Context, id string) error {
	if err := f.enter("DeleteProject"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.projects, id)
	return nil
}

func (f *fakeBackend) ListProjectMedia(_ context.Context, projectID string) ([]model.MediaFile, error) {
	if err := f.enter("ListProjectMedia"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.MediaFile{}
	for _, m := range f.media {
		if m.ProjectID != nil && *m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListProjectClips(_ context.Context, projectID string) ([]model.TimelineClip, error) {
	if err := f.enter("ListProjectClips"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.TimelineClip{}
	for _, c := range f.clips {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	// Unordered on purpose, the studio sorts
	return out, nil
}

func (f *fakeBackend) InsertMedia(_ context.Context, files []client.NewMedia) ([]model.MediaFile, error) {
	if err := f.enter("InsertMedia"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.MediaFile{}
	for _, n := range files {
		m := model.MediaFile{
			ID:        f.id("m"),
			UserID:    f.user,
			ProjectID: n.ProjectID,
			Name:      n.Name,
			Type:      n.Type,
			URL:       n.URL,
			Size:      n.Size,
			Duration:  n.Duration,
			Metadata:  n.Metadata,
		}
		f.media[m.ID] = m
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeBackend) UploadMedia(_ context.Context, projectID string, files ...client.UploadFile) (*client.UploadResult, error) {
	if err := f.enter("UploadMedia"); err != nil {
		return nil, err
	}

	res := &client.UploadResult{Success: true}
	for _, u := range files {
		data, err := io.ReadAll(u.Body)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		if err := f.fail["upload:"+u.Name]; err != nil {
			f.mu.Unlock()
			return nil, &client.HTTPError{StatusCode: 502, Message: err.Error()}
		}

		key := fmt.Sprintf("%s/%s", f.user, f.id("obj-")+"-"+u.Name)
		f.objects[key] = true

		m := model.MediaFile{
			ID:     f.id("m"),
			UserID: f.user,
			Name:   u.Name,
			Type:   model.MediaVideo,
			URL:    "https://storage.example.com/media/" + key,
			Size:   int64(len(data)),
		}
		if projectID != "" {
			id := projectID
			m.ProjectID = &id
		}
		f.media[m.ID] = m
		f.mu.Unlock()

		res.Files = append(res.Files, m)
	}

	return res, nil
}

func (f *fakeBackend) DeleteObject(_ context.Context, key string) error {
	if err := f.enter("DeleteObject"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) DeleteMedia(_ context.Context, id string) error {
	if err := f.enter("DeleteMedia"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.media, id)
	return nil
}

func (f *fakeBackend) CreateClip(_ context.Context, c client.NewClip) (*model.TimelineClip, error) {
	if err := f.enter("CreateClip"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	delay := f.clipDelay
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	clip := model.TimelineClip{
		ID:          f.id("c"),
		ProjectID:   c.ProjectID,
		MediaFileID: c.MediaFileID,
		TrackNumber: c.TrackNumber,
		TrackType:   c.TrackType,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		TrimStart:   c.TrimStart,
		TrimEnd:     c.TrimEnd,
		Properties:  c.Properties,
	}
	f.clips[clip.ID] = clip
	return &clip, nil
}

func (f *fakeBackend) UpdateClip(_ context.Context, id string, patch validators.ClipPatch) (*model.TimelineClip, error) {
	if err := f.enter("UpdateClip"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.clips[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: 404, Message: "Clip not found"}
	}
	patch.Apply(&c)
	f.clips[id] = c
	return &c, nil
}

func (f *fakeBackend) DeleteClip(_ context.Context, id string) error {
	if err := f.enter("DeleteClip"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clips, id)
	return nil
}

func (f *fakeBackend) GenerateImage(_ context.Context, prompt, _ string) (*client.ImageResult, error) {
	if err := f.enter("GenerateImage"); err != nil {
		return nil, err
	}
	return &client.ImageResult{Success: true, IsDemo: true, ImageURL: "https://images.example.com/stock-1", Prompt: prompt}, nil
}

func (f *fakeBackend) GenerateVideo(_ context.Context, prompt string, duration float64) (*client.VideoResult, error) {
	if err := f.enter("GenerateVideo"); err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = timeline.FixedClipDuration
	}
	return &client.VideoResult{Success: true, IsDemo: true, VideoURL: "https://video.example.com/sample.mp4", Prompt: prompt, Duration: duration}, nil
}

func (f *fakeBackend) Render(_ context.Context, projectID string) (*client.RenderResult, error) {
	if err := f.enter("Render"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.projects[projectID]
	url := "https://video.example.com/sample.mp4"
	p.RenderStatus = model.RenderCompleted
	p.OutputURL = &url
	f.projects[projectID] = p
	return &client.RenderResult{Success: true, IsDemo: true, OutputURL: url, Project: p}, nil
}

var _ Backend = (*fakeBackend)(nil)
