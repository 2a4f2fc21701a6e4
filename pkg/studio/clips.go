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

// AddTimelineClip inserts a clip and appends it to the mirror
func (s *Studio) AddTimelineClip(ctx context.Context, c client.NewClip) (*model.TimelineClip, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	check := model.TimelineClip{
		ProjectID:   c.ProjectID,
		TrackNumber: c.TrackNumber,
		TrackType:   c.TrackType,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		TrimStart:   c.TrimStart,
		TrimEnd:     c.TrimEnd,
	}
	if _, err := validators.ClipValidator(&check); err != nil {
		return nil, err
	}

	clip, err := s.backend.CreateClip(ctx, c)
	if err != nil {
		zap.L().Warn("Failed to add clip", zap.Error(err))
		return nil, fmt.Errorf("failed to add clip, %w", err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == clip.ProjectID {
		s.clips = append(s.clips, *clip)
	}
	s.mu.Unlock()

	return clip, nil
}

// UpdateTimelineClip patches a clip and replaces its mirror entry
func (s *Studio) UpdateTimelineClip(ctx context.Context, id string, patch validators.ClipPatch) (*model.TimelineClip, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	clip, err := s.backend.UpdateClip(ctx, id, patch)
	if err != nil {
		zap.L().Warn("Failed to update clip", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update clip, %w", err)
	}

	s.mu.Lock()
	for i := range s.clips {
		if s.clips[i].ID == id {
			s.clips[i] = *clip
			break
		}
	}
	s.mu.Unlock()

	return clip, nil
}

func (s *Studio) DeleteTimelineClip(ctx context.Context, id string) error {
	if err := s.signedIn(); err != nil {
		return err
	}

	if err := s.backend.DeleteClip(ctx, id); err != nil {
		zap.L().Warn("Failed to delete clip", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete clip, %w", err)
	}

	s.mu.Lock()
	s.clips = slices.DeleteFunc(s.clips, func(c model.TimelineClip) bool { return c.ID == id })
	s.mu.Unlock()

	return nil
}

// AppendToTrack places a media file after the last clip of track in the
// current project. Every appended clip has the same fixed length. Appends
// are serialized: the next one only sees the track once the previous clip
// is in the mirror
func (s *Studio) AppendToTrack(ctx context.Context, mediaID string, track int, trackType string) (*model.TimelineClip, error) {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	projectID, err := s.currentID()
	if err != nil {
		return nil, err
	}

	if trackType == "" {
		trackType = model.TrackVideo
	}

	s.mu.RLock()
	start, end := timeline.Append(s.clips, track, s.clipDuration)
	s.mu.RUnlock()

	var media *string
	if mediaID != "" {
		media = &mediaID
	}

	return s.AddTimelineClip(ctx, client.NewClip{
		ProjectID:   projectID,
		MediaFileID: media,
		TrackNumber: track,
		TrackType:   trackType,
		StartTime:   start,
		EndTime:     end,
	})
}
