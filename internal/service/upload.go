// Package service holds the upload pipeline and the placeholder
// generators used by the HTTP handlers
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/validators"
	"bitwise74/studio-api/storage"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxParallelUploads = 4

// Prober returns the duration of a media file in seconds
type Prober func(ctx context.Context, f multipart.File) (float64, error)

type Uploader struct {
	DB      *gorm.DB
	Store   storage.Store
	MaxSize int64
	Allowed []string
	Probe   Prober
}

func NewUploader(db *gorm.DB, s storage.Store, maxSize int64, allowed []string, probe Prober) *Uploader {
	return &Uploader{
		DB:      db,
		Store:   s,
		MaxSize: maxSize,
		Allowed: allowed,
		Probe:   probe,
	}
}

// FileError is the failure of one file inside a batch. Status is the
// 4xx code of a rejected file, 0 when storing or registering it failed
type FileError struct {
	Name   string
	Status int
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Do uploads every file concurrently and registers a MediaFile row for
// each. The whole selection is rejected before any upload when one file
// is over the size ceiling. Otherwise files that succeed stay registered
// even if siblings fail, the failures are combined into the returned error
func (u *Uploader) Do(ctx context.Context, userID string, projectID *string, files []*multipart.FileHeader) ([]model.MediaFile, error) {
	if len(files) == 0 {
		return nil, validators.ErrNoFile
	}

	if err := validators.CheckSelection(validators.Headers(files), u.MaxSize); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		done = make([]*model.MediaFile, len(files))
		errs error
	)

	p := pool.New().WithMaxGoroutines(maxParallelUploads)
	for i, fh := range files {
		p.Go(func() {
			ent, status, err := u.one(ctx, userID, projectID, fh)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = multierr.Append(errs, &FileError{Name: fh.Filename, Status: status, Err: err})
				return
			}

			done[i] = ent
		})
	}
	p.Wait()

	// Keep the order of the selection
	out := make([]model.MediaFile, 0, len(files))
	for _, ent := range done {
		if ent != nil {
			out = append(out, *ent)
		}
	}

	return out, errs
}

func (u *Uploader) one(ctx context.Context, userID string, projectID *string, fh *multipart.FileHeader) (*model.MediaFile, int, error) {
	code, f, mime, err := validators.FileValidator(fh, u.MaxSize, u.Allowed)
	if err != nil {
		if code >= 500 {
			code = 0
		}
		return nil, code, err
	}
	defer f.Close()

	var duration float64
	if u.Probe != nil && (strings.HasPrefix(mime, "video/") || strings.HasPrefix(mime, "audio/")) {
		duration, err = u.Probe(ctx, f)
		if err != nil {
			zap.L().Warn("Failed to probe media duration", zap.String("file", fh.Filename), zap.Error(err))
			duration = 0
		}

		if _, err := f.Seek(0, 0); err != nil {
			return nil, 0, fmt.Errorf("failed to rewind file, %w", err)
		}
	}

	key, err := storage.NewKey(userID, fh.Filename)
	if err != nil {
		return nil, 0, err
	}

	upCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := u.Store.Put(upCtx, key, f, fh.Size, mime); err != nil {
		return nil, 0, fmt.Errorf("failed to upload to storage, %w", err)
	}

	ent := &model.MediaFile{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Name:      fh.Filename,
		Type:      MediaType(mime),
		URL:       u.Store.URL(key),
		Size:      fh.Size,
		Duration:  duration,
		Metadata: model.JSONMap{
			"original_name": fh.Filename,
			"mime_type":     mime,
			"extension":     strings.ToLower(filepath.Ext(fh.Filename)),
		},
	}

	if err := u.DB.WithContext(ctx).Create(ent).Error; err != nil {
		// Without a row nothing references the object anymore
		if rmErr := u.Store.Remove(context.Background(), key); rmErr != nil {
			zap.L().Error("Failed to cleanup after failed insert", zap.String("key", key), zap.Error(rmErr))
		}

		return nil, 0, fmt.Errorf("failed to register media file, %w", err)
	}

	zap.L().Debug("Media file uploaded", zap.String("key", key), zap.String("id", ent.ID))
	return ent, 0, nil
}

// MediaType maps a MIME type to the coarse media type of a MediaFile
func MediaType(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return model.MediaVideo
	case strings.HasPrefix(mime, "audio/"):
		return model.MediaAudio
	default:
		return model.MediaImage
	}
}
