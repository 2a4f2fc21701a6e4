package project

import (
	"errors"
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Owned loads a project owned by the requesting user. When it returns
// false a response has already been written
func Owned(c *gin.Context, d *internal.Deps, projectID string) (*model.Project, bool) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Project ID is missing",
			"requestID": requestID,
		})
		return nil, false
	}

	var p model.Project

	err := d.DB.
		Where("user_id = ? AND id = ?", userID, projectID).
		First(&p).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Project not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return nil, false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup project", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return &p, true
}
