package project

import (
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectDelete removes a project with its clips. Media files stay in the
// library, they are only detached
func ProjectDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	p, ok := Owned(c, d, c.Param("id"))
	if !ok {
		return
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", p.ID).Delete(&model.TimelineClip{}).Error; err != nil {
			return err
		}

		if err := tx.
			Model(&model.MediaFile{}).
			Where("project_id = ? AND user_id = ?", p.ID, p.UserID).
			Update("project_id", nil).
			Error; err != nil {
			return err
		}

		return tx.Delete(p).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete project", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
