package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

const testMetadata = `[
  {"id": "mars-surface", "name": "Mars Surface", "width": 42208, "height": 9870,
   "levels": 17, "format": "jpeg", "generatedAt": "2026-01-15T10:00:00Z"},
  {"id": "orphaned", "name": "No Tiles On Disk", "width": 100, "height": 100},
  {"name": "unnamed-id-fallback", "width": 2000, "height": 1000}
]`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(testMetadata), 0o644))

	for _, id := range []string{"mars-surface", "unnamed-id-fallback"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, id), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, id, id+".dzi"), []byte("<Image/>"), 0o644))
	}
	return dir
}

func TestListImages(t *testing.T) {
	svc := NewService(writeTestCatalog(t), "/api/v1/tiles")

	images, err := svc.ListImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2, "entries without a descriptor on disk are skipped")

	mars := images[0]
	assert.Equal(t, "mars-surface", mars.ID)
	assert.Equal(t, "Mars Surface", mars.Name)
	assert.Equal(t, "/api/v1/tiles/mars-surface/mars-surface.dzi", mars.DziURL)
	assert.Equal(t, "/api/v1/tiles/mars-surface/mars-surface_thumb.jpg", mars.ThumbnailURL)
	assert.Equal(t, "42208×9870 pixels", mars.Description)
	assert.Equal(t, "417 MP", mars.Size)
	assert.Equal(t, 17, mars.Levels)
	assert.Equal(t, "jpeg", mars.Format)

	fallback := images[1]
	assert.Equal(t, "unnamed-id-fallback", fallback.ID, "name stands in for a missing id")
	assert.Equal(t, "unknown", fallback.Format)
	assert.Equal(t, "2 MP", fallback.Size)
}

func TestListImagesWithoutMetadata(t *testing.T) {
	svc := NewService(t.TempDir(), "/api/v1/tiles")

	images, err := svc.ListImages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestListImagesWithCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte("{broken"), 0o644))

	_, err := NewService(dir, "/api/v1/tiles").ListImages(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStorageRead, apperrors.GetCode(err))
}

func TestGetImage(t *testing.T) {
	svc := NewService(writeTestCatalog(t), "/api/v1/tiles")

	img, err := svc.GetImage(context.Background(), "mars-surface")
	require.NoError(t, err)
	assert.Equal(t, "Mars Surface", img.Name)

	_, err = svc.GetImage(context.Background(), "nope")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestDescriptorPath(t *testing.T) {
	dir := writeTestCatalog(t)
	svc := NewService(dir, "/api/v1/tiles")

	path, err := svc.DescriptorPath(context.Background(), "mars-surface")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mars-surface", "mars-surface.dzi"), path)

	_, err = svc.DescriptorPath(context.Background(), "orphaned")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}
