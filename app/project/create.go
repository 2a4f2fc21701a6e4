package project

import (
	"net/http"
	"strings"

	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type createBody struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	DurationSeconds *int          `json:"duration_seconds"`
	TimelineData    model.JSONMap `json:"timeline_data"`
}

// ProjectCreate inserts a new draft project with an empty timeline
func ProjectCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Name can't be empty",
			"requestID": requestID,
		})
		return
	}

	duration := viper.GetInt("studio.movie_minutes") * 60
	if body.DurationSeconds != nil {
		if *body.DurationSeconds < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Duration can't be negative",
				"requestID": requestID,
			})
			return
		}
		duration = *body.DurationSeconds
	}

	timeline := body.TimelineData
	if timeline == nil {
		timeline = model.JSONMap{}
	}

	p := model.Project{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		Description:     body.Description,
		TimelineData:    timeline,
		RenderStatus:    model.RenderDraft,
		DurationSeconds: duration,
	}

	if err := d.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create project", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, p)
}
