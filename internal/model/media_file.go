package model

import "time"

const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaAI    = "ai"
)

var MediaTypes = []string{MediaImage, MediaVideo, MediaAudio, MediaAI}

// MediaFile is an uploaded or generated asset. Rows are never updated,
// only created and deleted. Metadata holds original_name and mime_type for
// uploads, the prompt for generated assets
type MediaFile struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	ProjectID *string   `gorm:"index" json:"project_id"`
	Name      string    `gorm:"not null" json:"name"`
	Type      string    `gorm:"not null" json:"type"`
	URL       string    `gorm:"not null" json:"url"`
	Size      int64     `json:"size"`
	Duration  float64   `json:"duration"` // Seconds, 0 if unknown
	Metadata  JSONMap   `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
