package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"time"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	"github.com/cosmic-canvas/canvas-api/internal/services/viewport"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// captureSnippet steers the viewer to the annotation's recorded view, waits
// for the render to settle, and returns a PNG of the cropped, marked snippet.
func (s *ServiceImpl) captureSnippet(ctx context.Context, viewer Viewer, record models.Annotation) ([]byte, error) {
	target := viewport.Point{X: record.X, Y: record.Y}
	targetZoom := s.opts.FallbackZoomRatio * viewer.MaxZoom()
	if record.HasZoomLevel() {
		targetZoom = *record.ZoomLevel
	}
	if max := viewer.MaxZoom(); targetZoom > max {
		targetZoom = max
	}
	mapper := viewport.NewMapper(viewer)

	// Viewers occasionally land off-target when a transform arrives mid
	// animation. One corrective re-apply; after that the view is captured
	// as-is.
	for attempt := 0; ; attempt++ {
		if err := mapper.NavigateTo(target, targetZoom, false); err != nil {
			return nil, err
		}
		if err := s.waitForTiles(ctx, viewer); err != nil {
			return nil, err
		}

		center := viewer.Center()
		if math.Abs(center.X-target.X) <= s.opts.CenterTolerance &&
			math.Abs(center.Y-target.Y) <= s.opts.CenterTolerance &&
			math.Abs(viewer.Zoom()-targetZoom) <= s.opts.ZoomTolerance {
			break
		}
		if attempt >= 1 {
			log.Printf("export: viewer did not settle on annotation %s, capturing anyway", record.ID)
			break
		}
	}

	frame, err := viewer.Frame()
	if err != nil {
		return nil, err
	}
	return s.captureSnippetImage(frame, record.Color)
}

// captureSnippetImage crops the frame, marks the pin and encodes the PNG.
func (s *ServiceImpl) captureSnippetImage(frame *image.RGBA, pinColor string) ([]byte, error) {
	snippet := s.cropSnippet(frame)
	drawMarker(snippet, pinColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, snippet); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encoding snippet")
	}
	return buf.Bytes(), nil
}

// waitForTiles blocks until enough tile-loaded events arrive or the
// stabilization timeout elapses. A timeout is not an error; the view is
// simply captured with whatever tiles made it.
func (s *ServiceImpl) waitForTiles(ctx context.Context, viewer Viewer) error {
	tiles := make(chan struct{}, 64)
	dispose := viewer.Subscribe(viewport.EventTileLoaded, func() {
		select {
		case tiles <- struct{}{}:
		default:
		}
	})
	defer dispose()

	viewer.ForceRedraw()

	timer := time.NewTimer(s.opts.StabilizeTimeout)
	defer timer.Stop()

	for seen := 0; seen < s.opts.MinTiles; {
		select {
		case <-tiles:
			seen++
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCaptureTimeout, "cancelled while waiting for tiles")
		}
	}
	return nil
}

// cropSnippet cuts a centered square out of the frame. The annotation sits at
// the viewer center, so the crop is centered on the frame. Frames smaller
// than the snippet are padded by the blank border of the fresh image.
func (s *ServiceImpl) cropSnippet(frame *image.RGBA) *image.RGBA {
	size := s.opts.SnippetSize
	snippet := image.NewRGBA(image.Rect(0, 0, size, size))

	b := frame.Bounds()
	srcX := b.Min.X + (b.Dx()-size)/2
	srcY := b.Min.Y + (b.Dy()-size)/2
	dstX, dstY := 0, 0
	if srcX < b.Min.X {
		dstX = b.Min.X - srcX
		srcX = b.Min.X
	}
	if srcY < b.Min.Y {
		dstY = b.Min.Y - srcY
		srcY = b.Min.Y
	}

	draw.Draw(snippet, image.Rect(dstX, dstY, size, size), frame, image.Pt(srcX, srcY), draw.Src)
	return snippet
}

// drawMarker paints crosshair lines through the snippet center and a ring
// around it, in the annotation's pin color.
func drawMarker(snippet *image.RGBA, hexColor string) {
	r, g, b := hexToRGB(hexColor)
	pin := color.RGBA{R: r, G: g, B: b, A: 255}

	size := snippet.Bounds().Dx()
	cx, cy := size/2, size/2
	const radius = 14.0

	for i := 0; i < size; i++ {
		// Crosshairs stop short of the ring so the pin point stays visible.
		if math.Abs(float64(i-cx)) > radius+4 {
			snippet.SetRGBA(i, cy, pin)
			snippet.SetRGBA(i, cy+1, pin)
		}
		if math.Abs(float64(i-cy)) > radius+4 {
			snippet.SetRGBA(cx, i, pin)
			snippet.SetRGBA(cx+1, i, pin)
		}
	}

	lo := int(math.Floor(radius)) + 2
	for dy := -lo; dy <= lo; dy++ {
		for dx := -lo; dx <= lo; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if math.Abs(dist-radius) <= 1.2 {
				snippet.SetRGBA(cx+dx, cy+dy, pin)
			}
		}
	}
}
