package studio

import (
	"context"
	"fmt"

	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/client"
)

const maxGeneratedNameLength = 60

// GenerateImage asks for an image and registers the result as an "ai"
// media file of the current project
func (s *Studio) GenerateImage(ctx context.Context, prompt, style string) (*model.MediaFile, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	res, err := s.backend.GenerateImage(ctx, prompt, style)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image, %w", err)
	}

	return s.AddMediaFile(ctx, client.NewMedia{
		Name: generatedName(prompt, ".png"),
		Type: model.MediaAI,
		URL:  res.ImageURL,
		Metadata: model.JSONMap{
			"prompt":    prompt,
			"style":     style,
			"generator": "image",
			"isDemo":    res.IsDemo,
		},
	})
}

// GenerateVideo asks for a video and registers the result like GenerateImage
func (s *Studio) GenerateVideo(ctx context.Context, prompt string, duration float64) (*model.MediaFile, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}

	res, err := s.backend.GenerateVideo(ctx, prompt, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate video, %w", err)
	}

	return s.AddMediaFile(ctx, client.NewMedia{
		Name:     generatedName(prompt, ".mp4"),
		Type:     model.MediaAI,
		URL:      res.VideoURL,
		Duration: res.Duration,
		Metadata: model.JSONMap{
			"prompt":    prompt,
			"generator": "video",
			"isDemo":    res.IsDemo,
		},
	})
}

func generatedName(prompt, ext string) string {
	r := []rune(prompt)
	if len(r) > maxGeneratedNameLength {
		r = r[:maxGeneratedNameLength]
	}

	return string(r) + ext
}
