package generate

import (
	"net/http"

	"bitwise74/studio-api/internal"

	"github.com/gin-gonic/gin"
)

type videoBody struct {
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
}

func GenerateVideo(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body videoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	prompt, ok := checkPrompt(c, body.Prompt)
	if !ok {
		return
	}

	res := d.Placeholders.Video(prompt, body.Duration)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"isDemo":   true,
		"videoUrl": res.URL,
		"prompt":   res.Prompt,
		"duration": res.Duration,
		"note":     res.Note,
	})
}
