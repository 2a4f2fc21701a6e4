package service

import (
	"hash/fnv"
	"strings"
)

// Placeholders produces the canned results of the generation and render
// endpoints. No inference or encoding happens anywhere in this service,
// the same prompt always yields the same asset
type Placeholders struct {
	StockImages    []string
	SampleVideoURL string
}

// ImageResult is the fake output of an image generation
type ImageResult struct {
	URL    string `json:"imageUrl"`
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
	Note   string `json:"note"`
}

// VideoResult is the fake output of a video generation
type VideoResult struct {
	URL      string  `json:"videoUrl"`
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
	Note     string  `json:"note"`
}

const (
	imageNote  = "Demo result. Connect an image model to generate real images."
	videoNote  = "Demo result. Connect a video model to generate real videos."
	renderNote = "Demo render. Connect a rendering service to compose the timeline."
)

func (p *Placeholders) Image(prompt, style string) ImageResult {
	url := p.SampleVideoURL
	if len(p.StockImages) > 0 {
		url = p.StockImages[pick(prompt, len(p.StockImages))]
	}

	return ImageResult{
		URL:    url,
		Prompt: prompt,
		Style:  style,
		Note:   imageNote,
	}
}

func (p *Placeholders) Video(prompt string, duration float64) VideoResult {
	if duration <= 0 {
		duration = 5
	}

	return VideoResult{
		URL:      p.SampleVideoURL,
		Prompt:   prompt,
		Duration: duration,
		Note:     videoNote,
	}
}

// Render returns the output URL a finished render would have
func (p *Placeholders) Render() (string, string) {
	return p.SampleVideoURL, renderNote
}

func pick(s string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(s))))
	return int(h.Sum32() % uint32(n))
}

// Tool is one entry of the AI tool catalog
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Demo        bool   `json:"demo"`
}

// Tools lists the generation tools the API exposes
func Tools() []Tool {
	return []Tool{
		{ID: "text-to-image", Name: "Text to Image", Description: "Create a still from a text prompt", Endpoint: "/api/generate/image", Demo: true},
		{ID: "text-to-video", Name: "Text to Video", Description: "Create a short clip from a text prompt", Endpoint: "/api/generate/video", Demo: true},
		{ID: "render", Name: "Render Movie", Description: "Compose the project timeline into one video", Endpoint: "/api/render", Demo: true},
	}
}

