package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/cosmic-canvas/canvas-api/api/annotations"
	"github.com/cosmic-canvas/canvas-api/api/export"
	"github.com/cosmic-canvas/canvas-api/api/health"
	"github.com/cosmic-canvas/canvas-api/api/images"
	"github.com/cosmic-canvas/canvas-api/api/tiles"
	"github.com/cosmic-canvas/canvas-api/api/types"
	"github.com/cosmic-canvas/canvas-api/api/version"

	// Generated Swagger spec, registered for the /docs UI.
	_ "github.com/cosmic-canvas/canvas-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(NotFoundHandler())

	if deps == nil {
		deps = &types.Dependencies{}
	}

	v1 := engine.Group("/api/v1")

	// Annotation CRUD and the catalog share the images group so the imageId
	// parameter stays consistent across features.
	imagesGroup := v1.Group("/images")
	imagesGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 20, 40))
	images.RegisterRoutes(imagesGroup, deps)
	annotations.RegisterRoutes(imagesGroup, deps)

	validateGroup := v1.Group("")
	validateGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 20, 40))
	annotations.RegisterValidationRoutes(validateGroup, deps)

	// Tile fetches come in bursts while the viewer fills its canvas, so the
	// budget is higher.
	tilesGroup := v1.Group("/tiles")
	tilesGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 100, 200))
	tiles.RegisterRoutes(tilesGroup, deps)

	// PDF export drives the headless viewer and is strictly serialized, so
	// keep the request rate low.
	exportGroup := v1.Group("/images")
	exportGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 1, 3))
	export.RegisterRoutes(exportGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
