package annotations

import (
	"context"

	"github.com/cosmic-canvas/canvas-api/internal/models"
)

// Repository defines keyed data access to per-image annotation sets. All
// records live under one namespace key whose value maps imageID to an ordered
// annotation list; every write rewrites the full blob (last writer wins across
// processes, serialized within this one).
type Repository interface {
	// List returns the stored set for an image in insertion order. Missing or
	// corrupt storage degrades to an empty result, never an error.
	List(ctx context.Context, imageID string) []models.Annotation

	// Mutate passes the image's current set to fn and persists fn's result,
	// holding the repository lock across the whole read-modify-write cycle so
	// concurrent mutations never work from a stale base. An error from fn
	// aborts the cycle without writing.
	Mutate(ctx context.Context, imageID string, fn func(records []models.Annotation) ([]models.Annotation, error)) error

	// Replace overwrites the image's annotation set.
	Replace(ctx context.Context, imageID string, records []models.Annotation) error
}

// Service defines the annotation business logic
type Service interface {
	// List returns all annotations for an image in insertion order.
	List(ctx context.Context, imageID string) []models.Annotation

	// Create validates coordinates and text, assigns a fresh id and creation
	// timestamp and appends the record to the image's set.
	Create(ctx context.Context, imageID string, x, y float64, text, color string, zoomLevel *float64) (*models.Annotation, error)

	// Update applies the non-nil fields of updates to an existing record.
	// The record's id, imageId and timestamp are never altered. Returns
	// found=false when the id does not exist within the image.
	Update(ctx context.Context, imageID, id string, updates models.AnnotationUpdate) (found bool, err error)

	// Delete removes a record. Returns found=false when the id does not exist.
	Delete(ctx context.Context, imageID, id string) (found bool, err error)

	// Clear removes all records for an image.
	Clear(ctx context.Context, imageID string) error

	// Count returns the number of records stored for an image.
	Count(ctx context.Context, imageID string) int

	// ValidateText checks user-facing annotation text: non-empty, at most 500
	// characters, free of markup injection sequences.
	ValidateText(text string) error

	// ExportJSON serializes the image's annotation set as a JSON array.
	ExportJSON(ctx context.Context, imageID string) (string, error)

	// ImportJSON replaces the image's annotation set from a JSON array after
	// structurally validating every record. Rejects the whole payload on any
	// violation; the stored set is untouched on failure.
	ImportJSON(ctx context.Context, imageID string, data string) error
}
