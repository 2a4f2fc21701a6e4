package generate

import (
	"net/http"
	"time"

	"bitwise74/studio-api/app/project"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/timeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type renderBody struct {
	ProjectID string `json:"project_id"`
}

// Render walks the project through rendering to completed and points its
// output at the sample video
func Render(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body renderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	p, ok := project.Owned(c, d, body.ProjectID)
	if !ok {
		return
	}

	clips := []model.TimelineClip{}

	err := d.DB.
		Where("project_id = ?", p.ID).
		Find(&clips).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to lookup project clips", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Checking and claiming the project happens in one statement so two
	// renders can't both start
	res := d.DB.
		Model(&model.Project{}).
		Where("id = ? AND render_status <> ?", p.ID, model.RenderRendering).
		Updates(map[string]any{
			"render_status": model.RenderRendering,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark project as rendering", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Project is already rendering",
			"requestID": requestID,
		})
		return
	}

	url, note := d.Placeholders.Render()

	err = d.DB.Model(p).Updates(map[string]any{
		"render_status": model.RenderCompleted,
		"output_url":    url,
		"updated_at":    time.Now(),
	}).Error
	if err != nil {
		if failErr := d.DB.Model(p).Update("render_status", model.RenderFailed).Error; failErr != nil {
			zap.L().Error("Failed to mark project as failed", zap.Error(failErr), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to complete render", zap.Error(err), zap.String("requestID", requestID))
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

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"isDemo":    true,
		"outputUrl": url,
		"clips":     len(clips),
		"duration":  timeline.Length(clips),
		"project":   p,
		"note":      note,
	})
}
