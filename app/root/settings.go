package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// Settings returns the studio defaults a client needs before placing
// clips or uploading: clip length, movie length and the upload ceiling
func Settings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"clip_duration":   viper.GetFloat64("studio.clip_duration"),
		"movie_minutes":   viper.GetInt("studio.movie_minutes"),
		"max_upload_size": viper.GetInt64("upload.max_size"),
		"allowed_types":   viper.GetStringSlice("upload.allowed_types"),
	})
}
