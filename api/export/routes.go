package export

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// RegisterRoutes registers the PDF export route on the images group
func RegisterRoutes(images *gin.RouterGroup, deps *types.Dependencies) {
	images.POST("/:imageId/export", Post(deps))
}
