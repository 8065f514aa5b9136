package images

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// List returns the catalog of tiled images
// @Summary      List images
// @Description  List all tiled images whose pyramid is present on disk
// @Tags         images
// @Produce      json
// @Success      200 {object} types.ImagesResponse "Image catalog"
// @Failure      500 {object} types.ErrorResponse "Catalog unreadable"
// @Router       /api/v1/images [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := deps.CatalogService.ListImages(c.Request.Context())
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.ImagesResponse{
			Success: true,
			Count:   len(catalog),
			Images:  catalog,
		})
	}
}

// GetByID returns one catalog entry
// @Summary      Get image
// @Tags         images
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Success      200 {object} models.CatalogImage "Catalog entry"
// @Failure      404 {object} types.ErrorResponse "Unknown image"
// @Router       /api/v1/images/{imageId} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		image, err := deps.CatalogService.GetImage(c.Request.Context(), c.Param("imageId"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, image)
	}
}
