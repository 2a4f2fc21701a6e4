package media

import (
	"net/http"

	"bitwise74/studio-api/app/project"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type insertItem struct {
	ProjectID *string       `json:"project_id"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	URL       string        `json:"url"`
	Size      int64         `json:"size"`
	Duration  float64       `json:"duration"`
	Metadata  model.JSONMap `json:"metadata"`
}

type insertBody struct {
	Files []insertItem `json:"files"`
}

// MediaInsert registers media rows whose bytes already live somewhere,
// e.g. generated assets. Either all rows are created or none
func MediaInsert(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var body insertBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if len(body.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrEmptyMediaBatch.Error(),
			"requestID": requestID,
		})
		return
	}

	if len(body.Files) > validators.MaxMediaBatch {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrMediaBatchTooLong.Error(),
			"requestID": requestID,
		})
		return
	}

	entries := make([]model.MediaFile, len(body.Files))
	checked := map[string]bool{}

	for i, f := range body.Files {
		ent := model.MediaFile{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProjectID: f.ProjectID,
			Name:      f.Name,
			Type:      f.Type,
			URL:       f.URL,
			Size:      f.Size,
			Duration:  f.Duration,
			Metadata:  f.Metadata,
		}

		if code, err := validators.MediaValidator(&ent); err != nil {
			c.JSON(code, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		if ent.ProjectID != nil && !checked[*ent.ProjectID] {
			if _, ok := project.Owned(c, d, *ent.ProjectID); !ok {
				return
			}
			checked[*ent.ProjectID] = true
		}

		entries[i] = ent
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to insert media files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, entries)
}
