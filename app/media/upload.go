package media

import (
	"errors"
	"net/http"

	"bitwise74/studio-api/app/project"
	"bitwise74/studio-api/internal"
	"bitwise74/studio-api/internal/service"
	"bitwise74/studio-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// allFailedStatus answers with the client error every file was rejected
// with. Mixed failures or a storage/database failure are a 502
func allFailedStatus(statuses map[int]bool) int {
	if len(statuses) != 1 {
		return http.StatusBadGateway
	}

	for code := range statuses {
		if code >= 400 && code < 500 {
			return code
		}
	}

	return http.StatusBadGateway
}

// MediaUpload stores every file of the "files" form field and registers
// it. Answers 201 when everything went through, 207 with the failures
// listed when only some files did
func MediaUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed multipart form",
			"requestID": requestID,
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	var projectID *string
	if id := c.PostForm("project_id"); id != "" {
		if _, ok := project.Owned(c, d, id); !ok {
			return
		}
		projectID = &id
	}

	entries, err := d.Uploader.Do(c.Request.Context(), userID, projectID, files)

	var oe *validators.OversizedError
	if errors.As(err, &oe) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     oe.Error(),
			"files":     oe.Files,
			"requestID": requestID,
		})
		return
	}

	if err != nil {
		failed := []failure{}
		statuses := map[int]bool{}
		for _, e := range multierr.Errors(err) {
			var fe *service.FileError
			if errors.As(e, &fe) {
				failed = append(failed, failure{Name: fe.Name, Error: fe.Err.Error()})
				statuses[fe.Status] = true
			}
		}

		zap.L().Warn("Some uploads failed", zap.Error(err), zap.String("requestID", requestID))

		if len(entries) == 0 {
			c.JSON(allFailedStatus(statuses), gin.H{
				"error":     "Upload failed: " + err.Error(),
				"failed":    failed,
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusMultiStatus, gin.H{
			"success":   false,
			"files":     entries,
			"failed":    failed,
			"error":     "Some files failed to upload: " + err.Error(),
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"files":   entries,
	})
}
