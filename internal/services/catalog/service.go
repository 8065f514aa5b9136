// Package catalog lists the tiled images available to the viewer. The tiling
// pipeline drops each image under the tiles directory as
// <id>/<id>.dzi plus a tile folder and thumbnail, and maintains an
// images-metadata.json index at the directory root; this service reads that
// layout and never writes to it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// MetadataFile is the index the tiling pipeline maintains in the tiles
// directory.
const MetadataFile = "images-metadata.json"

// Service exposes the image catalog.
type Service interface {
	// ListImages returns all catalog entries whose tile pyramid is present on
	// disk. A missing metadata index yields an empty catalog, not an error.
	ListImages(ctx context.Context) ([]models.CatalogImage, error)

	// GetImage looks up one catalog entry by id.
	GetImage(ctx context.Context, id string) (*models.CatalogImage, error)

	// DescriptorPath returns the on-disk DZI descriptor path for an image,
	// verifying it exists.
	DescriptorPath(ctx context.Context, id string) (string, error)
}

// metadataEntry mirrors one record of images-metadata.json.
type metadataEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Levels      int    `json:"levels"`
	Format      string `json:"format"`
	GeneratedAt string `json:"generatedAt"`
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	tilesDir string
	baseURL  string
}

// NewService creates a catalog over a tiles directory. baseURL is the public
// route prefix tiles are served under, e.g. "/api/v1/tiles".
func NewService(tilesDir, baseURL string) Service {
	return &ServiceImpl{tilesDir: tilesDir, baseURL: baseURL}
}

// ListImages implements Service.
func (s *ServiceImpl) ListImages(_ context.Context) ([]models.CatalogImage, error) {
	data, err := os.ReadFile(filepath.Join(s.tilesDir, MetadataFile))
	if os.IsNotExist(err) {
		return []models.CatalogImage{}, nil
	}
	if err != nil {
		return nil, apperrors.StorageError("read", err)
	}

	var entries []metadataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.StorageError("read", fmt.Errorf("parsing %s: %w", MetadataFile, err))
	}

	images := make([]models.CatalogImage, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = entry.Name
		}
		name := entry.Name
		if name == "" {
			name = entry.ID
		}
		if id == "" {
			continue
		}

		// Entries whose pyramid was removed from disk are stale index rows.
		if _, err := os.Stat(s.descriptorPath(id)); err != nil {
			log.Printf("catalog: skipping %s: descriptor not readable: %v", id, err)
			continue
		}

		format := entry.Format
		if format == "" {
			format = "unknown"
		}

		images = append(images, models.CatalogImage{
			ID:           id,
			Name:         name,
			DziURL:       fmt.Sprintf("%s/%s/%s.dzi", s.baseURL, id, id),
			ThumbnailURL: fmt.Sprintf("%s/%s/%s_thumb.jpg", s.baseURL, id, id),
			Description:  fmt.Sprintf("%d×%d pixels", entry.Width, entry.Height),
			Size:         fmt.Sprintf("%.0f MP", float64(entry.Width)*float64(entry.Height)/1e6),
			Width:        entry.Width,
			Height:       entry.Height,
			Levels:       entry.Levels,
			Format:       format,
			GeneratedAt:  entry.GeneratedAt,
			Source:       "external",
		})
	}
	return images, nil
}

// GetImage implements Service.
func (s *ServiceImpl) GetImage(ctx context.Context, id string) (*models.CatalogImage, error) {
	images, err := s.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	for i := range images {
		if images[i].ID == id {
			return &images[i], nil
		}
	}
	return nil, apperrors.NotFound("image", id)
}

// DescriptorPath implements Service.
func (s *ServiceImpl) DescriptorPath(_ context.Context, id string) (string, error) {
	path := s.descriptorPath(id)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NotFound("image", id)
	}
	return path, nil
}

func (s *ServiceImpl) descriptorPath(id string) string {
	return filepath.Join(s.tilesDir, id, id+".dzi")
}
