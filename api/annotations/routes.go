package annotations

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// RegisterRoutes registers the per-image annotation routes on the images
// group
func RegisterRoutes(images *gin.RouterGroup, deps *types.Dependencies) {
	images.GET("/:imageId/annotations", List(deps))
	images.POST("/:imageId/annotations", Create(deps))
	images.PUT("/:imageId/annotations/:id", Update(deps))
	images.DELETE("/:imageId/annotations/:id", Delete(deps))
	images.DELETE("/:imageId/annotations", Clear(deps))
	images.GET("/:imageId/annotations/export", ExportJSON(deps))
	images.POST("/:imageId/annotations/import", ImportJSON(deps))
}

// RegisterValidationRoutes registers the image-independent validation route
func RegisterValidationRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("/annotations/validate", Validate(deps))
}
