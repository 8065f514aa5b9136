package annotations

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cosmic-canvas/canvas-api/api/types"
	"github.com/cosmic-canvas/canvas-api/internal/models"
)

// CreateRequest is the create annotation payload. Coordinates are normalized
// to the image: 0,0 is the top-left corner, 1,1 the bottom-right.
type CreateRequest struct {
	X         *float64 `json:"x" binding:"required" example:"0.2706"`
	Y         *float64 `json:"y" binding:"required" example:"0.0581"`
	Text      string   `json:"text" example:"Crater A"`
	Color     string   `json:"color" example:"#3b82f6"`
	ZoomLevel *float64 `json:"zoomLevel,omitempty" example:"2.5"`
}

// UpdateRequest carries the mutable annotation fields; absent fields are left
// unchanged
type UpdateRequest struct {
	Text      *string  `json:"text,omitempty"`
	Color     *string  `json:"color,omitempty"`
	ZoomLevel *float64 `json:"zoomLevel,omitempty"`
}

// ValidateRequest is the text validation payload
type ValidateRequest struct {
	Text string `json:"text"`
}

// List retrieves all annotations for an image
// @Summary      List annotations
// @Description  Retrieve all annotations for an image in creation order
// @Tags         annotations
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Success      200 {object} types.AnnotationsResponse "Annotations"
// @Router       /api/v1/images/{imageId}/annotations [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := deps.AnnotationService.List(c.Request.Context(), c.Param("imageId"))
		types.SendSuccess(c, types.AnnotationsResponse{Annotations: records, Count: len(records)})
	}
}

// Create creates a new annotation on an image
// @Summary      Create annotation
// @Description  Create an annotation at a normalized image position
// @Tags         annotations
// @Accept       json
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Param        annotation body CreateRequest true "Annotation data"
// @Success      201 {object} models.Annotation "Created annotation"
// @Failure      400 {object} types.ErrorResponse "Invalid coordinates or text"
// @Failure      500 {object} types.ErrorResponse "Storage failure"
// @Router       /api/v1/images/{imageId}/annotations [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		record, err := deps.AnnotationService.Create(
			c.Request.Context(), c.Param("imageId"), *req.X, *req.Y, req.Text, req.Color, req.ZoomLevel)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendCreated(c, record)
	}
}

// Update modifies an existing annotation
// @Summary      Update annotation
// @Description  Update an annotation's text, color or zoom level
// @Tags         annotations
// @Accept       json
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Param        id path string true "Annotation ID"
// @Param        annotation body UpdateRequest true "Fields to update"
// @Success      200 {object} types.BaseResponse "Updated"
// @Failure      400 {object} types.ErrorResponse "Invalid text"
// @Failure      404 {object} types.ErrorResponse "Annotation not found"
// @Router       /api/v1/images/{imageId}/annotations/{id} [put]
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		found, err := deps.AnnotationService.Update(
			c.Request.Context(), c.Param("imageId"), c.Param("id"),
			models.AnnotationUpdate{Text: req.Text, Color: req.Color, ZoomLevel: req.ZoomLevel})
		if err != nil {
			types.SendError(c, err)
			return
		}
		if !found {
			types.SendNotFound(c, "Annotation not found")
			return
		}

		types.SendSuccess(c, types.BaseResponse{Status: types.StatusOK, Message: "Annotation updated"})
	}
}

// Delete removes an annotation
// @Summary      Delete annotation
// @Tags         annotations
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Param        id path string true "Annotation ID"
// @Success      200 {object} types.BaseResponse "Deleted"
// @Failure      404 {object} types.ErrorResponse "Annotation not found"
// @Router       /api/v1/images/{imageId}/annotations/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := deps.AnnotationService.Delete(c.Request.Context(), c.Param("imageId"), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		if !found {
			types.SendNotFound(c, "Annotation not found")
			return
		}

		types.SendSuccess(c, types.BaseResponse{Status: types.StatusOK, Message: "Annotation deleted"})
	}
}

// Clear removes all annotations from an image
// @Summary      Clear annotations
// @Tags         annotations
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Success      200 {object} types.ClearResponse "Cleared"
// @Router       /api/v1/images/{imageId}/annotations [delete]
func Clear(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID := c.Param("imageId")
		count := deps.AnnotationService.Count(c.Request.Context(), imageID)
		if err := deps.AnnotationService.Clear(c.Request.Context(), imageID); err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.ClearResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Cleared:      count,
		})
	}
}

// Validate checks annotation text without storing anything
// @Summary      Validate annotation text
// @Description  Check text against the length and content rules applied at creation
// @Tags         annotations
// @Accept       json
// @Produce      json
// @Param        request body ValidateRequest true "Text to validate"
// @Success      200 {object} types.ValidationResponse "Validation result"
// @Router       /api/v1/annotations/validate [post]
func Validate(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.AnnotationService.ValidateText(req.Text); err != nil {
			types.SendSuccess(c, types.ValidationResponse{Valid: false, Reason: err.Error()})
			return
		}
		types.SendSuccess(c, types.ValidationResponse{Valid: true})
	}
}

// ExportJSON downloads an image's annotations as a JSON document
// @Summary      Export annotations as JSON
// @Tags         annotations
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Success      200 {array} models.Annotation "Annotation array"
// @Router       /api/v1/images/{imageId}/annotations/export [get]
func ExportJSON(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID := c.Param("imageId")
		payload, err := deps.AnnotationService.ExportJSON(c.Request.Context(), imageID)
		if err != nil {
			types.SendError(c, err)
			return
		}

		filename := fmt.Sprintf("annotations-%s-%s.json", imageID, time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/json", []byte(payload))
	}
}

// ImportJSON replaces an image's annotations from an uploaded JSON document
// @Summary      Import annotations from JSON
// @Description  Validate and install a previously exported annotation array. The payload is rejected as a whole on the first invalid record.
// @Tags         annotations
// @Accept       json
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Param        annotations body []models.Annotation true "Annotation array"
// @Success      200 {object} types.ImportResponse "Import result"
// @Failure      400 {object} types.ErrorResponse "Structurally invalid payload"
// @Router       /api/v1/images/{imageId}/annotations/import [post]
func ImportJSON(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			types.SendBadRequest(c, "Could not read request body")
			return
		}

		imageID := c.Param("imageId")
		if err := deps.AnnotationService.ImportJSON(c.Request.Context(), imageID, string(body)); err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.ImportResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Annotations imported"},
			Imported:     deps.AnnotationService.Count(c.Request.Context(), imageID),
		})
	}
}
