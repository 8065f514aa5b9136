package models

// DefaultPinColor is the pin color assigned when a client does not pick one.
const DefaultPinColor = "#3b82f6"

// MaxAnnotationTextLength is the upper bound for annotation text, enforced on
// create, update and standalone validation.
const MaxAnnotationTextLength = 500

// Annotation is a user-placed point of interest on one image. Coordinates are
// normalized to [0,1] with the origin at the top-left corner, independent of
// the viewer's current zoom, pan or rotation.
type Annotation struct {
	ID      string `json:"id"`
	ImageID string `json:"imageId"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	Text  string `json:"text"`
	Color string `json:"color"` // Hex color for the pin

	// Timestamp is the creation time in Unix milliseconds. Immutable.
	Timestamp int64 `json:"timestamp"`

	// ZoomLevel is the viewer magnification in effect when the annotation was
	// created. Used to reproduce the same framing on export. Optional.
	ZoomLevel *float64 `json:"zoomLevel,omitempty"`
}

// HasZoomLevel reports whether a creation-time zoom level was recorded.
func (a *Annotation) HasZoomLevel() bool {
	return a.ZoomLevel != nil
}

// AnnotationUpdate carries the mutable fields of an annotation. Nil fields are
// left unchanged. ID, ImageID and Timestamp are not updatable.
type AnnotationUpdate struct {
	Text      *string  `json:"text,omitempty"`
	Color     *string  `json:"color,omitempty"`
	ZoomLevel *float64 `json:"zoomLevel,omitempty"`
}
