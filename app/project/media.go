package project

import (
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProjectMedia returns the media files attached to a project
func ProjectMedia(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	p, ok := Owned(c, d, c.Param("id"))
	if !ok {
		return
	}

	entries := []model.MediaFile{}

	err := d.DB.
		Where("project_id = ? AND user_id = ?", p.ID, p.UserID).
		Order("created_at desc").
		Find(&entries).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup project media", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ProjectClips returns the timeline of a project ordered by track, then start
func ProjectClips(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	p, ok := Owned(c, d, c.Param("id"))
	if !ok {
		return
	}

	entries := []model.TimelineClip{}

	err := d.DB.
		Where("project_id = ?", p.ID).
		Order("track_number asc").
		Order("start_time asc").
		Find(&entries).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup project clips", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}
