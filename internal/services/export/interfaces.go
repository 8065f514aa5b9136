package export

import (
	"context"
	"image"
	"io"

	"github.com/cosmic-canvas/canvas-api/internal/services/viewport"
)

// Viewer is the surface the export pipeline drives: the shared viewer
// capability interface plus frame capture. The headless deep-zoom viewport
// satisfies it.
type Viewer interface {
	viewport.Viewer

	// ForceRedraw starts rendering the current view in the background. Tile
	// progress arrives through tile-loaded events; the finished frame through
	// Frame.
	ForceRedraw()

	// Frame returns the most recently rendered frame.
	Frame() (*image.RGBA, error)
}

// Service generates PDF annotation reports.
type Service interface {
	// Export writes a PDF report for an image's annotations to w and returns
	// the suggested filename. The viewer's center and zoom are restored before
	// Export returns, on every path.
	Export(ctx context.Context, viewer Viewer, imageID, imageName string, w io.Writer) (filename string, err error)
}
