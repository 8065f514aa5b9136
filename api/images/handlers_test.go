package images

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmic-canvas/canvas-api/api/types"
	"github.com/cosmic-canvas/canvas-api/internal/models"
	"github.com/cosmic-canvas/canvas-api/internal/services/catalog"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	metadata := `[{"id": "mars", "name": "Mars", "width": 4000, "height": 2000, "levels": 12, "format": "jpeg"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.MetadataFile), []byte(metadata), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mars", "mars.dzi"), []byte("<Image/>"), 0o644))

	deps := &types.Dependencies{CatalogService: catalog.NewService(dir, "/api/v1/tiles")}
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/images"), deps)
	return router
}

func TestListImages(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/images", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ImagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "/api/v1/tiles/mars/mars.dzi", resp.Images[0].DziURL)
}

func TestGetImage(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/images/mars", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var image models.CatalogImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &image))
	assert.Equal(t, "Mars", image.Name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/images/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
