package version

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// RegisterRoutes registers the service banner route
func RegisterRoutes(engine *gin.Engine, _ *types.Dependencies) {
	engine.GET("/", Get())
}
