package model

import "time"

const (
	TrackVideo = "video"
	TrackAudio = "audio"
	TrackText  = "text"
)

var TrackTypes = []string{TrackVideo, TrackAudio, TrackText}

// TimelineClip places a media file on one track of a project.
// StartTime/EndTime are relative to the project timeline, TrimStart/TrimEnd
// are offsets into the source media and independent of them
type TimelineClip struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID   string    `gorm:"index;not null" json:"project_id"`
	MediaFileID *string   `json:"media_file_id"`
	TrackNumber int       `gorm:"not null" json:"track_number"`
	TrackType   string    `json:"track_type"`
	StartTime   float64   `json:"start_time"`
	EndTime     float64   `json:"end_time"`
	TrimStart   float64   `json:"trim_start"`
	TrimEnd     float64   `json:"trim_end"`
	Properties  JSONMap   `gorm:"type:text" json:"properties"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
