package project

import (
	"net/http"

	"bitwise74/studio-api/internal"

	"github.com/gin-gonic/gin"
)

func ProjectFetch(c *gin.Context, d *internal.Deps) {
	p, ok := Owned(c, d, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, p)
}
