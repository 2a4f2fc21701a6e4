package clip

import (
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClipUpdate patches a clip. The result has to be a valid clip on its
// own, overlap with other clips is allowed
func ClipUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var patch validators.ClipPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     validators.ErrNoFieldsToUpdate.Error(),
			"requestID": requestID,
		})
		return
	}

	clip, ok := owned(c, d)
	if !ok {
		return
	}

	patch.Apply(clip)

	if code, err := validators.ClipValidator(clip); err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if patch.MediaFileID != nil && !mediaOwned(c, d, clip.MediaFileID) {
		return
	}

	if err := d.DB.Save(clip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update clip", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, clip)
}
