package tiles

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// RegisterRoutes registers the tile file routes on the tiles group
func RegisterRoutes(tiles *gin.RouterGroup, deps *types.Dependencies) {
	tiles.GET("/:imageId/*tilePath", Serve(deps))
}
