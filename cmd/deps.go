package cmd

import (
	"context"
	"fmt"

	"github.com/cosmic-canvas/canvas-api/api/types"
	"github.com/cosmic-canvas/canvas-api/internal/database"
	"github.com/cosmic-canvas/canvas-api/internal/services/annotations"
	"github.com/cosmic-canvas/canvas-api/internal/services/catalog"
	"github.com/cosmic-canvas/canvas-api/internal/services/deepzoom"
	"github.com/cosmic-canvas/canvas-api/internal/services/export"
	"github.com/cosmic-canvas/canvas-api/internal/storage"
	"github.com/cosmic-canvas/canvas-api/pkg/config"
)

// tilesBaseURL is the public route prefix tile and descriptor URLs are
// built against. It must match the route registered in api.RegisterRoutes.
const tilesBaseURL = "/api/v1/tiles"

// buildDependencies wires the storage backend, services and viewer factory
// from the configuration. The returned database handle is nil unless the
// sqlite backend is selected; the caller owns closing it.
func buildDependencies(cfg *config.Config) (*types.Dependencies, *database.DB, error) {
	backend, db, err := buildStorageBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	annotationService := annotations.NewService(annotations.NewRepository(backend))
	catalogService := catalog.NewService(cfg.Tiles.Dir, tilesBaseURL)

	exportService := export.NewService(annotationService, export.Options{
		SnippetSize:       cfg.Export.SnippetSize,
		MinTiles:          cfg.Export.MinTiles,
		StabilizeTimeout:  cfg.Export.StabilizeTimeout,
		FallbackZoomRatio: cfg.Export.FallbackZoomRatio,
	})

	deps := &types.Dependencies{
		DB:                db,
		AnnotationService: annotationService,
		CatalogService:    catalogService,
		ExportService:     exportService,
		TilesDir:          cfg.Tiles.Dir,
		OpenViewer:        viewerFactory(catalogService, cfg),
	}
	return deps, db, nil
}

// buildStorageBackend selects the annotation store from config. The sqlite
// backend also returns the database handle for health checks and shutdown.
func buildStorageBackend(cfg *config.Config) (storage.Backend, *database.DB, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemory(), nil, nil
	case "file":
		backend, err := storage.NewFile(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return backend, nil, nil
	case "sqlite":
		db, err := database.Initialize(cfg.Database.Path, cfg.Database.LogQueries)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		backend, err := storage.NewSQLite(db.DB)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		return backend, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// viewerFactory opens a headless deep-zoom viewport over an image's tile
// pyramid, sized per the export configuration.
func viewerFactory(catalogService catalog.Service, cfg *config.Config) func(ctx context.Context, imageID string) (export.Viewer, error) {
	width := cfg.Export.ViewportWidth
	height := cfg.Export.ViewportHeight
	return func(ctx context.Context, imageID string) (export.Viewer, error) {
		descriptorPath, err := catalogService.DescriptorPath(ctx, imageID)
		if err != nil {
			return nil, err
		}
		source, err := deepzoom.OpenTileSource(descriptorPath)
		if err != nil {
			return nil, err
		}
		vp := deepzoom.NewViewport(source, width, height)
		vp.Open()
		return vp, nil
	}
}
