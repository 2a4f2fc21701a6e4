package clip

import (
	"net/http"

	"bitwise74/studio-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ClipDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	clip, ok := owned(c, d)
	if !ok {
		return
	}

	if err := d.DB.Delete(clip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete clip", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
