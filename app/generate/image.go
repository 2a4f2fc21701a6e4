package generate

import (
	"net/http"
	"strings"

	"bitwise74/studio-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPromptLength = 2000

type imageBody struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

func GenerateImage(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body imageBody
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

	res := d.Placeholders.Image(prompt, body.Style)
	zap.L().Debug("Returning placeholder image", zap.String("url", res.URL))

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"isDemo":   true,
		"imageUrl": res.URL,
		"prompt":   res.Prompt,
		"style":    res.Style,
		"note":     res.Note,
	})
}

func checkPrompt(c *gin.Context, raw string) (string, bool) {
	requestID := c.MustGet("requestID").(string)

	prompt := strings.TrimSpace(raw)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Prompt is required",
			"requestID": requestID,
		})
		return "", false
	}

	if len(prompt) > maxPromptLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Prompt is too long",
			"requestID": requestID,
		})
		return "", false
	}

	return prompt, true
}
