package models

// CatalogImage describes one tiled image available to the viewer. Entries are
// produced by the external tiling pipeline and consumed read-only here.
type CatalogImage struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DziURL       string `json:"dziUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Description  string `json:"description,omitempty"`
	Size         string `json:"size,omitempty"` // Human readable, e.g. "417 MP"
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Levels       int    `json:"levels,omitempty"` // Pyramid depth
	Format       string `json:"format,omitempty"`
	GeneratedAt  string `json:"generatedAt,omitempty"`
	Source       string `json:"source"` // "external" or "local"
}
