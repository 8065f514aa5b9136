package tiles

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// contentTypes maps tile file extensions to their media type. Anything else
// is served as an opaque blob.
var contentTypes = map[string]string{
	".dzi":  "application/xml",
	".xml":  "application/xml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Serve returns DZI descriptors and tile images straight from the tiles
// directory. Tiles never change once generated, so responses are marked
// immutable.
// @Summary      Serve tile file
// @Description  Serve a DZI descriptor, tile image or thumbnail from the tile store
// @Tags         tiles
// @Param        imageId path string true "Image ID"
// @Param        tilePath path string true "File path within the image's tile folder"
// @Success      200 {file} binary "Tile file"
// @Failure      403 {object} types.ErrorResponse "Path escapes the tile store"
// @Failure      404 {object} types.ErrorResponse "File not found"
// @Router       /api/v1/tiles/{imageId}/{tilePath} [get]
func Serve(deps *types.Dependencies) gin.HandlerFunc {
	root := filepath.Clean(deps.TilesDir)

	return func(c *gin.Context) {
		imageID := c.Param("imageId")
		tilePath := c.Param("tilePath")

		fullPath := filepath.Clean(filepath.Join(root, imageID, tilePath))
		if !strings.HasPrefix(fullPath, root+string(filepath.Separator)) {
			c.JSON(http.StatusForbidden, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Invalid path",
			})
			return
		}

		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			types.SendNotFound(c, "File not found")
			return
		}

		ext := strings.ToLower(filepath.Ext(fullPath))
		contentType, ok := contentTypes[ext]
		if !ok {
			contentType = "application/octet-stream"
		}

		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.File(fullPath)
	}
}
