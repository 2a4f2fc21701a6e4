// Package generate contains the placeholder generation and render
// endpoints. They never process media, see service.Placeholders
package generate

import (
	"net/http"

	"bitwise74/studio-api/internal/service"

	"github.com/gin-gonic/gin"
)

func Tools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tools":   service.Tools(),
	})
}
