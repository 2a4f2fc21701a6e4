package studio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/client"
	"bitwise74/studio-api/pkg/validators"
	"bitwise74/studio-api/storage"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const maxParallelUploads = 4

// AddMediaFile registers a single media row and appends it to the list.
// Rows without a project are attached to the current one
func (s *Studio) AddMediaFile(ctx context.Context, m client.NewMedia) (*model.MediaFile, error) {
	out, err := s.insertMedia(ctx, []client.NewMedia{m})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.media = append(s.media, s.ofCurrent(out)...)
	s.mu.Unlock()

	return &out[0], nil
}

// AddMediaFiles registers a batch and prepends it to the list
func (s *Studio) AddMediaFiles(ctx context.Context, files []client.NewMedia) ([]model.MediaFile, error) {
	if len(files) == 0 {
		return []model.MediaFile{}, nil
	}

	out, err := s.insertMedia(ctx, files)
	if err != nil {
		return []model.MediaFile{}, err
	}

	s.prependMedia(out)
	return out, nil
}

func (s *Studio) insertMedia(ctx context.Context, files []client.NewMedia) ([]model.MediaFile, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	cur := s.CurrentProject()
	batch := slices.Clone(files)
	for i := range batch {
		if batch[i].ProjectID == nil && cur != nil {
			id := cur.ID
			batch[i].ProjectID = &id
		}
	}

	out, err := s.backend.InsertMedia(ctx, batch)
	if err != nil {
		zap.L().Warn("Failed to insert media files", zap.Int("count", len(batch)), zap.Error(err))
		return nil, fmt.Errorf("failed to add media files, %w", err)
	}

	if len(out) == 0 {
		return nil, errors.New("failed to add media files, empty response")
	}

	return out, nil
}

func (s *Studio) prependMedia(batch []model.MediaFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.media = append(s.ofCurrent(batch), s.media...)
}

// ofCurrent keeps the files of the current project, only those belong to
// the mirror. Caller holds the lock
func (s *Studio) ofCurrent(batch []model.MediaFile) []model.MediaFile {
	return slices.DeleteFunc(slices.Clone(batch), func(m model.MediaFile) bool {
		return s.current == nil || m.ProjectID == nil || *m.ProjectID != s.current.ID
	})
}

// DeleteMediaFile removes the stored object, then the row. The entry
// leaves the mirror only after both succeeded. A storage failure keeps
// the row and can be retried; objects that are already gone count as
// removed
func (s *Studio) DeleteMediaFile(ctx context.Context, id, url string) error {
	userID := s.UserID()
	if userID == "" {
		return ErrNotSignedIn
	}

	// URLs outside the user's folder (stock or sample assets) have no
	// object of ours behind them
	if key, err := storage.KeyFromURL(url); err == nil && storage.OwnedBy(key, userID) {
		if err := s.backend.DeleteObject(ctx, key); err != nil {
			zap.L().Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
			return fmt.Errorf("failed to delete stored file, %w", err)
		}
	}

	if err := s.backend.DeleteMedia(ctx, id); err != nil {
		zap.L().Warn("Failed to delete media file", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete media file, %w", err)
	}

	s.mu.Lock()
	s.media = slices.DeleteFunc(s.media, func(m model.MediaFile) bool { return m.ID == id })
	for i := range s.clips {
		if s.clips[i].MediaFileID != nil && *s.clips[i].MediaFileID == id {
			s.clips[i].MediaFileID = nil
		}
	}
	s.mu.Unlock()

	return nil
}

// UploadFiles uploads a local selection into the current project. The
// whole selection is rejected before any request when a file is over
// the ceiling. Files are sent concurrently, one request each, and the
// ones that made it are kept even if siblings failed
func (s *Studio) UploadFiles(ctx context.Context, files []client.UploadFile) ([]model.MediaFile, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return []model.MediaFile{}, nil
	}

	s.mu.RLock()
	maxSize := s.maxUploadSize
	s.mu.RUnlock()

	if err := validators.CheckSelection(files, maxSize); err != nil {
		return []model.MediaFile{}, err
	}

	projectID := ""
	if cur := s.CurrentProject(); cur != nil {
		projectID = cur.ID
	}

	var (
		mu   sync.Mutex
		done = make([][]model.MediaFile, len(files))
		errs error
	)

	p := pool.New().WithMaxGoroutines(maxParallelUploads)
	for i, f := range files {
		p.Go(func() {
			res, err := s.backend.UploadMedia(ctx, projectID, f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Name, err))
				return
			}

			for _, fail := range res.Failed {
				errs = multierr.Append(errs, fmt.Errorf("%s: %s", fail.Name, fail.Error))
			}

			done[i] = res.Files
		})
	}
	p.Wait()

	out := []model.MediaFile{}
	for _, batch := range done {
		out = append(out, batch...)
	}

	if len(out) > 0 {
		s.prependMedia(out)
	}

	if errs != nil {
		return out, fmt.Errorf("%d of %d uploads failed, %w", len(multierr.Errors(errs)), len(files), errs)
	}

	return out, nil
}
