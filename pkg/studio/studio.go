// Package studio keeps an in-memory mirror of the signed-in user's
// projects, the current project's media files and its timeline clips.
// Every mutation writes through to the API and the mirror only changes
// after the remote call succeeded. Nothing is retried.
package studio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/client"
	"bitwise74/studio-api/pkg/timeline"
	"bitwise74/studio-api/pkg/validators"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrNoProject   = errors.New("no current project")
)

const (
	DefaultProjectName          = "My Movie"
	DefaultMovieDurationMinutes = 5
	DefaultMaxUploadSize        = 100 << 20
)

// Backend is the remote side of the studio. *client.Client satisfies it
type Backend interface {
	Settings(ctx context.Context) (*client.Settings, error)

	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, req client.CreateProjectRequest) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, patch validators.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjectMedia(ctx context.Context, projectID string) ([]model.MediaFile, error)
	ListProjectClips(ctx context.Context, projectID string) ([]model.TimelineClip, error)

	InsertMedia(ctx context.Context, files []client.NewMedia) ([]model.MediaFile, error)
	UploadMedia(ctx context.Context, projectID string, files ...client.UploadFile) (*client.UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
	DeleteMedia(ctx context.Context, id string) error

	CreateClip(ctx context.Context, clip client.NewClip) (*model.TimelineClip, error)
	UpdateClip(ctx context.Context, id string, patch validators.ClipPatch) (*model.TimelineClip, error)
	DeleteClip(ctx context.Context, id string) error

	GenerateImage(ctx context.Context, prompt, style string) (*client.ImageResult, error)
	GenerateVideo(ctx context.Context, prompt string, duration float64) (*client.VideoResult, error)
	Render(ctx context.Context, projectID string) (*client.RenderResult, error)
}

var _ Backend = (*client.Client)(nil)

type Option func(*Studio)

// WithMaxUploadSize sets the per-file ceiling checked before uploading
func WithMaxUploadSize(n int64) Option {
	return func(s *Studio) {
		s.maxUploadSize = n
		s.pinned.maxUploadSize = true
	}
}

// WithMovieDuration sets the duration new projects get, in minutes
func WithMovieDuration(minutes int) Option {
	return func(s *Studio) {
		s.movieMinutes = minutes
		s.pinned.movieMinutes = true
	}
}

// WithClipDuration sets the length of clips appended to a track
func WithClipDuration(seconds float64) Option {
	return func(s *Studio) {
		s.clipDuration = seconds
		s.pinned.clipDuration = true
	}
}

// Studio is the application state of one editing session. It is safe for
// concurrent use. mu is never held across a remote call, appendMu is held
// for a whole AppendToTrack so concurrent appends can't share a start time
type Studio struct {
	backend Backend

	appendMu sync.Mutex

	mu            sync.RWMutex
	userID        string
	maxUploadSize int64
	movieMinutes  int
	clipDuration  float64

	// Set through options, the server settings don't override them
	pinned struct {
		maxUploadSize, movieMinutes, clipDuration bool
	}

	projects []model.Project
	current  *model.Project
	media    []model.MediaFile
	clips    []model.TimelineClip
}

// New creates the state for userID, whose session the backend carries
func New(b Backend, userID string, opts ...Option) *Studio {
	s := &Studio{
		backend:       b,
		userID:        userID,
		maxUploadSize: DefaultMaxUploadSize,
		movieMinutes:  DefaultMovieDurationMinutes,
		clipDuration:  timeline.FixedClipDuration,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Start loads the server settings and the user's projects once auth
// resolved. A user without projects gets "My Movie", otherwise the most
// recently updated project becomes current
func (s *Studio) Start(ctx context.Context) error {
	if s.UserID() == "" {
		return ErrNotSignedIn
	}

	if err := s.LoadSettings(ctx); err != nil {
		return err
	}

	projects, err := s.LoadProjects(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		_, err := s.CreateProject(ctx, DefaultProjectName, "")
		return err
	}

	return s.LoadProject(ctx, projects[0].ID)
}

// SignOut clears every mirror. The studio can't be used afterwards
func (s *Studio) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = ""
	s.projects = nil
	s.current = nil
	s.media = nil
	s.clips = nil
}

// LoadSettings applies the clip duration, movie duration and upload
// ceiling configured on the server. Values given as options are kept
func (s *Studio) LoadSettings(ctx context.Context) error {
	if err := s.signedIn(); err != nil {
		return err
	}

	set, err := s.backend.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings, %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pinned.clipDuration && set.ClipDuration > 0 {
		s.clipDuration = set.ClipDuration
	}
	if !s.pinned.movieMinutes && set.MovieMinutes > 0 {
		s.movieMinutes = set.MovieMinutes
	}
	if !s.pinned.maxUploadSize && set.MaxUploadSize > 0 {
		s.maxUploadSize = set.MaxUploadSize
	}

	return nil
}

func (s *Studio) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Studio) MovieDurationMinutes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movieMinutes
}

func (s *Studio) ClipDuration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clipDuration
}

func (s *Studio) MaxUploadSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxUploadSize
}

func (s *Studio) SetMovieDurationMinutes(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if minutes > 0 {
		s.movieMinutes = minutes
	}
}

// Projects returns a copy of the project list
func (s *Studio) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

// CurrentProject returns a copy of the current project, nil if none
func (s *Studio) CurrentProject() *model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}

	p := *s.current
	return &p
}

func (s *Studio) MediaFiles() []model.MediaFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.media)
}

func (s *Studio) Clips() []model.TimelineClip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.clips)
}

// ClipsOnTrack returns the clips of one track ordered by start time
func (s *Studio) ClipsOnTrack(track int) []model.TimelineClip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.TimelineClip
	for _, c := range s.clips {
		if c.TrackNumber == track {
			out = append(out, c)
		}
	}
	timeline.Sort(out)

	return out
}

func (s *Studio) currentID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userID == "" {
		return "", ErrNotSignedIn
	}
	if s.current == nil {
		return "", ErrNoProject
	}

	return s.current.ID, nil
}

func (s *Studio) signedIn() error {
	if s.UserID() == "" {
		return ErrNotSignedIn
	}
	return nil
}
