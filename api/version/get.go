package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get handles service banner requests
// @Summary      Service banner
// @Tags         version
// @Produce      json
// @Success      200 {object} map[string]interface{} "Service information"
// @Router       / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Cosmic Canvas API",
			"version":     "1.0.0",
			"description": "Annotation and PDF export service for deep-zoom imagery",
			"status":      "running",
		})
	}
}
