package types

import (
	"context"

	"github.com/cosmic-canvas/canvas-api/internal/database"
	"github.com/cosmic-canvas/canvas-api/internal/services/annotations"
	"github.com/cosmic-canvas/canvas-api/internal/services/catalog"
	"github.com/cosmic-canvas/canvas-api/internal/services/export"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB                *database.DB
	AnnotationService annotations.Service
	CatalogService    catalog.Service
	ExportService     export.Service

	// TilesDir is the root directory tile pyramids are served from.
	TilesDir string

	// OpenViewer builds a ready-to-drive viewer over an image's tile pyramid
	// for PDF export. The export handler owns the returned viewer for the
	// duration of the request.
	OpenViewer func(ctx context.Context, imageID string) (export.Viewer, error)
}
