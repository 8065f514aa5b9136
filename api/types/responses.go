package types

import "github.com/cosmic-canvas/canvas-api/internal/models"

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`            // One of the Status constants above
	Message string `json:"message,omitempty"` // Human-readable message
}

// AnnotationsResponse for annotation lists
type AnnotationsResponse struct {
	Annotations []models.Annotation `json:"annotations"`
	Count       int                 `json:"count"`
}

// ImagesResponse for the image catalog
type ImagesResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Images  []models.CatalogImage `json:"images"`
}

// ValidationResponse for annotation text validation
type ValidationResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ImportResponse reports how many records an import installed
type ImportResponse struct {
	BaseResponse
	Imported int `json:"imported"`
}

// ClearResponse reports how many records were removed
type ClearResponse struct {
	BaseResponse
	Cleared int `json:"cleared"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}
