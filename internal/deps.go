package internal

import (
	"bitwise74/studio-api/internal/service"
	"bitwise74/studio-api/storage"

	"gorm.io/gorm"
)

// Deps is shared by every handler
type Deps struct {
	DB           *gorm.DB
	Store        storage.Store
	Uploader     *service.Uploader
	Placeholders *service.Placeholders
}
