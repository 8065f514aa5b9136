package annotations

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// unsafeTextPattern matches markup that must never reach storage. The checks
// mirror the viewer client: script/iframe tags and javascript: URLs.
var unsafeTextPattern = regexp.MustCompile(`(?i)<script|<iframe|javascript:`)

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repository Repository
}

// NewService creates a new annotation service
func NewService(repository Repository) Service {
	return &ServiceImpl{repository: repository}
}

// List returns all annotations for an image in insertion order.
func (s *ServiceImpl) List(ctx context.Context, imageID string) []models.Annotation {
	return s.repository.List(ctx, imageID)
}

// Create validates the coordinates and text, assigns a fresh id and creation
// timestamp, and appends the record to the image's stored set. Empty text is
// allowed: pins are commonly named after placement.
func (s *ServiceImpl) Create(ctx context.Context, imageID string, x, y float64, text, color string, zoomLevel *float64) (*models.Annotation, error) {
	if imageID == "" {
		return nil, apperrors.ValidationError("imageId", "image id is required")
	}
	if err := validateCoordinates(x, y); err != nil {
		return nil, err
	}
	if err := validateStoredText(text); err != nil {
		return nil, err
	}
	if color == "" {
		color = models.DefaultPinColor
	}

	record := models.Annotation{
		ID:        uuid.New().String(),
		ImageID:   imageID,
		X:         x,
		Y:         y,
		Text:      text,
		Color:     color,
		Timestamp: time.Now().UnixMilli(),
		ZoomLevel: zoomLevel,
	}

	err := s.repository.Mutate(ctx, imageID, func(records []models.Annotation) ([]models.Annotation, error) {
		return append(records, record), nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update applies the non-nil fields of updates to an existing record. Only
// text, color and zoomLevel are mutable; id, imageId and timestamp never
// change after creation.
func (s *ServiceImpl) Update(ctx context.Context, imageID, id string, updates models.AnnotationUpdate) (bool, error) {
	if updates.Text != nil {
		if err := validateStoredText(*updates.Text); err != nil {
			return false, err
		}
	}

	found := false
	err := s.repository.Mutate(ctx, imageID, func(records []models.Annotation) ([]models.Annotation, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			found = true
			if updates.Text != nil {
				records[i].Text = *updates.Text
			}
			if updates.Color != nil {
				records[i].Color = *updates.Color
			}
			if updates.ZoomLevel != nil {
				records[i].ZoomLevel = updates.ZoomLevel
			}
			break
		}
		return records, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Delete removes a record from the image's set.
func (s *ServiceImpl) Delete(ctx context.Context, imageID, id string) (bool, error) {
	found := false
	err := s.repository.Mutate(ctx, imageID, func(records []models.Annotation) ([]models.Annotation, error) {
		filtered := make([]models.Annotation, 0, len(records))
		for _, record := range records {
			if record.ID == id {
				found = true
				continue
			}
			filtered = append(filtered, record)
		}
		return filtered, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Clear removes all records for an image.
func (s *ServiceImpl) Clear(ctx context.Context, imageID string) error {
	return s.repository.Replace(ctx, imageID, nil)
}

// Count returns the number of records stored for an image.
func (s *ServiceImpl) Count(ctx context.Context, imageID string) int {
	return len(s.repository.List(ctx, imageID))
}

// ValidateText checks annotation text as submitted from a naming flow:
// non-empty after trimming, at most 500 characters, no injection sequences.
func (s *ServiceImpl) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.ValidationError("text", "annotation text cannot be empty")
	}
	if len(text) > models.MaxAnnotationTextLength {
		return apperrors.ValidationError("text",
			fmt.Sprintf("annotation text is too long (max %d characters)", models.MaxAnnotationTextLength))
	}
	if unsafeTextPattern.MatchString(text) {
		return apperrors.ValidationError("text", "invalid characters in annotation text")
	}
	return nil
}

// ExportJSON serializes the image's current annotation set.
func (s *ServiceImpl) ExportJSON(ctx context.Context, imageID string) (string, error) {
	records := s.repository.List(ctx, imageID)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "encoding annotations")
	}
	return string(data), nil
}

// importRecord mirrors the annotation shape with pointer fields so missing and
// mistyped values can be told apart from zero values during import validation.
type importRecord struct {
	ID   *string  `json:"id"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Text *string  `json:"text"`
}

// ImportJSON replaces the image's annotation set from a JSON array. The whole
// payload is validated before anything is written: one bad record rejects the
// import and leaves the stored set unchanged.
func (s *ServiceImpl) ImportJSON(ctx context.Context, imageID string, data string) error {
	var structural []importRecord
	if err := json.Unmarshal([]byte(data), &structural); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid import format: expected an annotation array")
	}
	for i, record := range structural {
		if record.ID == nil || *record.ID == "" {
			return apperrors.Newf(apperrors.ErrCodeInvalidInput, "invalid annotation structure at index %d: missing id", i)
		}
		if record.X == nil || record.Y == nil {
			return apperrors.Newf(apperrors.ErrCodeInvalidInput, "invalid annotation structure at index %d: x and y must be numbers", i)
		}
		if record.Text == nil {
			return apperrors.Newf(apperrors.ErrCodeInvalidInput, "invalid annotation structure at index %d: text must be a string", i)
		}
		if err := validateCoordinates(*record.X, *record.Y); err != nil {
			return apperrors.Newf(apperrors.ErrCodeInvalidInput, "invalid annotation at index %d: coordinates out of range", i)
		}
	}

	var records []models.Annotation
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid annotation structure")
	}
	// Imported records belong to the target image regardless of any imageId
	// carried in the payload.
	for i := range records {
		records[i].ImageID = imageID
		if records[i].Color == "" {
			records[i].Color = models.DefaultPinColor
		}
	}
	return s.repository.Replace(ctx, imageID, records)
}

// validateCoordinates enforces the uniform reject policy: normalized
// coordinates outside [0,1] never reach storage from any entry point.
func validateCoordinates(x, y float64) error {
	if x < 0 || x > 1 {
		return apperrors.ValidationError("x", "coordinate must be between 0 and 1")
	}
	if y < 0 || y > 1 {
		return apperrors.ValidationError("y", "coordinate must be between 0 and 1")
	}
	return nil
}

// validateStoredText enforces the storage invariants for annotation text:
// bounded length and no injection sequences. Empty text is permitted so pins
// can be labeled later; ValidateText is the stricter check used when a name is
// explicitly submitted.
func validateStoredText(text string) error {
	if len(text) > models.MaxAnnotationTextLength {
		return apperrors.ValidationError("text",
			fmt.Sprintf("annotation text is too long (max %d characters)", models.MaxAnnotationTextLength))
	}
	if text != "" && unsafeTextPattern.MatchString(text) {
		return apperrors.ValidationError("text", "invalid characters in annotation text")
	}
	return nil
}
