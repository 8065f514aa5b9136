package images

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// RegisterRoutes registers image catalog routes on the images group
func RegisterRoutes(images *gin.RouterGroup, deps *types.Dependencies) {
	images.GET("", List(deps))
	images.GET("/:imageId", GetByID(deps))
}
