// Package clip contains the handlers of /api/clips. Clips have no owner
// column, access goes through the owning project
package clip

import (
	"errors"
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func owned(c *gin.Context, d *internal.Deps) (*model.TimelineClip, bool) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	clipID := c.Param("id")
	if clipID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return nil, false
	}

	var clip model.TimelineClip

	err := d.DB.
		Where("id = ? AND project_id IN (?)", clipID,
			d.DB.Model(&model.Project{}).Select("id").Where("user_id = ?", userID)).
		First(&clip).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Clip not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return nil, false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup clip", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return &clip, true
}

// mediaOwned checks that a referenced media file belongs to the user
func mediaOwned(c *gin.Context, d *internal.Deps, mediaID *string) bool {
	if mediaID == nil {
		return true
	}

	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var count int64

	err := d.DB.
		Model(&model.MediaFile{}).
		Where("id = ? AND user_id = ?", *mediaID, userID).
		Count(&count).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup media file", zap.Error(err), zap.String("requestID", requestID))
		return false
	}

	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Media file not found",
			"requestID": requestID,
		})
		return false
	}

	return true
}
