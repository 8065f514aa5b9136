package export

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
)

// Post generates and streams the PDF annotation report for an image
// @Summary      Export annotations as PDF
// @Description  Capture a snippet of each annotation from the tile pyramid and stream a PDF report
// @Tags         export
// @Produce      application/pdf
// @Param        imageId path string true "Image ID"
// @Success      200 {file} binary "PDF report"
// @Failure      404 {object} types.ErrorResponse "Unknown image"
// @Failure      409 {object} types.ErrorResponse "An export is already running"
// @Failure      422 {object} types.ErrorResponse "No annotations to export"
// @Failure      503 {object} types.ErrorResponse "Viewer unavailable"
// @Router       /api/v1/images/{imageId}/export [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID := c.Param("imageId")

		image, err := deps.CatalogService.GetImage(c.Request.Context(), imageID)
		if err != nil {
			types.SendError(c, err)
			return
		}

		viewer, err := deps.OpenViewer(c.Request.Context(), imageID)
		if err != nil {
			types.SendError(c, err)
			return
		}

		// The document is buffered so a mid-pipeline failure can still
		// produce a clean error response.
		var buf bytes.Buffer
		filename, err := deps.ExportService.Export(c.Request.Context(), viewer, imageID, image.Name, &buf)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
