package media

import (
	"errors"
	"net/http"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MediaDelete removes the stored object first and the row only after
// that. When storage fails the row is kept so the delete can be retried
func MediaDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	mediaID := c.Param("id")
	if mediaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	var ent model.MediaFile

	err := d.DB.
		Where("user_id = ? AND id = ?", userID, mediaID).
		First(&ent).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Media file not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if media file exists", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Rows pointing at external assets (stock images, sample video) have
	// nothing of ours to reclaim
	if key, err := storage.KeyFromURL(ent.URL); err == nil && storage.OwnedBy(key, userID) {
		if err := d.Store.Remove(c.Request.Context(), key); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Failed to remove the stored file, please try again",
				"retryable": true,
				"requestID": requestID,
			})

			zap.L().Error("Failed to delete object from storage", zap.Error(err), zap.String("key", key), zap.String("requestID", requestID))
			return
		}
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		// Clips keep their placement, they just lose the source
		if err := tx.
			Model(&model.TimelineClip{}).
			Where("media_file_id = ?", ent.ID).
			Update("media_file_id", nil).
			Error; err != nil {
			return err
		}

		return tx.Delete(&ent).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete media file row", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}

// StorageDelete removes a single object from the user's folder. Missing
// objects are not an error
func StorageDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	if !storage.OwnedBy(key, userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You can only delete your own files",
			"requestID": requestID,
		})
		return
	}

	if err := d.Store.Remove(c.Request.Context(), key); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid key",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Failed to remove the stored file, please try again",
			"retryable": true,
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete object from storage", zap.Error(err), zap.String("key", key), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
