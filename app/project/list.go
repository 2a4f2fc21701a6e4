// Package project contains the handlers of /api/projects
package project

import (
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProjectList returns every project of the user, most recently updated first
func ProjectList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	entries := []model.Project{}

	err := d.DB.
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&entries).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup user projects", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}
