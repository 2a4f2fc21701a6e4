package studio

import (
	"context"
	"fmt"
	"slices"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/client"
	"bitwise74/studio-api/pkg/timeline"
	"bitwise74/studio-api/pkg/validators"

	"go.uber.org/zap"
)

// LoadProjects replaces the project list, most recently updated first
func (s *Studio) LoadProjects(ctx context.Context) ([]model.Project, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		zap.L().Warn("Failed to load projects", zap.Error(err))
		return nil, fmt.Errorf("failed to load projects, %w", err)
	}

	s.mu.Lock()
	s.projects = slices.Clone(projects)
	s.mu.Unlock()

	return projects, nil
}

// CreateProject inserts a draft project sized by MovieDurationMinutes,
// prepends it to the list and makes it current
func (s *Studio) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	duration := s.MovieDurationMinutes() * 60

	p, err := s.backend.CreateProject(ctx, client.CreateProjectRequest{
		Name:            name,
		Description:     description,
		DurationSeconds: &duration,
	})
	if err != nil {
		zap.L().Warn("Failed to create project", zap.Error(err))
		return nil, fmt.Errorf("failed to create project, %w", err)
	}

	s.mu.Lock()
	s.projects = slices.Insert(s.projects, 0, *p)
	cur := *p
	s.current = &cur
	s.media = []model.MediaFile{}
	s.clips = []model.TimelineClip{}
	s.mu.Unlock()

	return p, nil
}

// LoadProject fetches the project, its media files and its clips and
// replaces all three mirrors at once. Nothing changes if any call fails
func (s *Studio) LoadProject(ctx context.Context, id string) error {
	if err := s.signedIn(); err != nil {
		return err
	}

	p, err := s.backend.GetProject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load project, %w", err)
	}

	media, err := s.backend.ListProjectMedia(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load project media, %w", err)
	}

	clips, err := s.backend.ListProjectClips(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load project clips, %w", err)
	}

	media = slices.DeleteFunc(media, func(m model.MediaFile) bool {
		return m.ProjectID == nil || *m.ProjectID != id
	})
	clips = slices.DeleteFunc(clips, func(c model.TimelineClip) bool {
		return c.ProjectID != id
	})
	timeline.Sort(clips)

	s.mu.Lock()
	s.current = p
	s.media = media
	s.clips = clips
	s.replaceProject(*p)
	s.mu.Unlock()

	return nil
}

// UpdateProject writes the patch and applies the stored result to the
// current project and the list. On failure the mirror stays as it was
func (s *Studio) UpdateProject(ctx context.Context, id string, patch validators.ProjectPatch) (*model.Project, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	if _, err := validators.ProjectPatchValidator(&patch); err != nil {
		return nil, err
	}

	p, err := s.backend.UpdateProject(ctx, id, patch)
	if err != nil {
		zap.L().Warn("Failed to update project", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update project, %w", err)
	}

	s.mu.Lock()
	s.replaceProject(*p)
	if s.current != nil && s.current.ID == p.ID {
		cur := *p
		s.current = &cur
	}
	s.mu.Unlock()

	return p, nil
}

// DeleteProject removes the project. Deleting the current project clears
// the current project state
func (s *Studio) DeleteProject(ctx context.Context, id string) error {
	if err := s.signedIn(); err != nil {
		return err
	}

	if err := s.backend.DeleteProject(ctx, id); err != nil {
		zap.L().Warn("Failed to delete project", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete project, %w", err)
	}

	s.mu.Lock()
	s.projects = slices.DeleteFunc(s.projects, func(p model.Project) bool { return p.ID == id })
	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.media = nil
		s.clips = nil
	}
	s.mu.Unlock()

	return nil
}

// Render runs the placeholder render of the current project
func (s *Studio) Render(ctx context.Context) (*client.RenderResult, error) {
	id, err := s.currentID()
	if err != nil {
		return nil, err
	}

	res, err := s.backend.Render(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to render project, %w", err)
	}

	s.mu.Lock()
	s.replaceProject(res.Project)
	if s.current != nil && s.current.ID == res.Project.ID {
		cur := res.Project
		s.current = &cur
	}
	s.mu.Unlock()

	return res, nil
}

// replaceProject swaps the list entry of p. Caller holds the lock
func (s *Studio) replaceProject(p model.Project) {
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return
		}
	}
}
