package clip

import (
	"net/http"

	"bitwise74/studio-api/app/project"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/model"
	"bitwise74/studio-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createBody struct {
	ProjectID   string        `json:"project_id"`
	MediaFileID *string       `json:"media_file_id"`
	TrackNumber int           `json:"track_number"`
	TrackType   string        `json:"track_type"`
	StartTime   float64       `json:"start_time"`
	EndTime     float64       `json:"end_time"`
	TrimStart   float64       `json:"trim_start"`
	TrimEnd     float64       `json:"trim_end"`
	Properties  model.JSONMap `json:"properties"`
}

func ClipCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if body.TrackType == "" {
		body.TrackType = model.TrackVideo
	}

	clip := model.TimelineClip{
		ID:          uuid.NewString(),
		ProjectID:   body.ProjectID,
		MediaFileID: body.MediaFileID,
		TrackNumber: body.TrackNumber,
		TrackType:   body.TrackType,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		TrimStart:   body.TrimStart,
		TrimEnd:     body.TrimEnd,
		Properties:  body.Properties,
	}

	if code, err := validators.ClipValidator(&clip); err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if _, ok := project.Owned(c, d, clip.ProjectID); !ok {
		return
	}

	if !mediaOwned(c, d, clip.MediaFileID) {
		return
	}

	if err := d.DB.Create(&clip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create clip", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, clip)
}
