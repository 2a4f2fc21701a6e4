package project

import (
	"net/http"
	"time"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProjectUpdate applies a partial patch and bumps updated_at
func ProjectUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var patch validators.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if code, err := validators.ProjectPatchValidator(&patch); err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	p, ok := Owned(c, d, c.Param("id"))
	if !ok {
		return
	}

	updates := patch.Updates()
	updates["updated_at"] = time.Now()

	if err := d.DB.Model(p).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update project", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.DB.Where("id = ?", p.ID).First(p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload project", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, p)
}
