// Package model defines database models
package model

import "time"

const (
	RenderDraft     = "draft"
	RenderRendering = "rendering"
	RenderCompleted = "completed"
	RenderFailed    = "failed"
)

var RenderStatuses = []string{RenderDraft, RenderRendering, RenderCompleted, RenderFailed}

// Project is one movie in progress
type Project struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string    `gorm:"index;not null" json:"user_id"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `json:"description"`
	TimelineData    JSONMap   `gorm:"type:text" json:"timeline_data"` // Opaque to the server
	RenderStatus    string    `gorm:"default:draft" json:"render_status"`
	OutputURL       *string   `json:"output_url"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`
}
