// Package media contains the handlers of the media library
package media

import (
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaList returns the whole library of the user, newest first. The
// optional type query narrows it to one media type
func MediaList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	q := d.DB.Where("user_id = ?", userID)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}

	entries := []model.MediaFile{}

	if err := q.Order("created_at desc").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup user media", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}
