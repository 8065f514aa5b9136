package viewport

import (
	"math"

	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// Mapper converts between normalized image coordinates and container pixel
// coordinates for a live viewer. Screen positions derived from it go stale on
// every pan, zoom, resize or open event; Track wires a refresh callback to all
// four so overlays cannot miss one.
type Mapper struct {
	viewer Viewer
}

// NewMapper creates a mapper over the given viewer.
func NewMapper(viewer Viewer) *Mapper {
	return &Mapper{viewer: viewer}
}

// ToScreen converts a normalized image point to container pixel coordinates.
// Returns ok=false while the viewer has no open image or no container yet; a
// wrong pixel value would place overlays at bogus positions, so "no position"
// is the only safe answer.
func (m *Mapper) ToScreen(p Point) (Point, bool) {
	scale, aspect, center, w, h, ok := m.frame()
	if !ok {
		return Point{}, false
	}

	dx := (p.X - center.X) * scale
	dy := (p.Y - center.Y) * scale * aspect

	sin, cos := math.Sincos(m.viewer.Rotation() * math.Pi / 180)
	return Point{
		X: w/2 + dx*cos - dy*sin,
		Y: h/2 + dx*sin + dy*cos,
	}, true
}

// ToNormalized converts a container pixel position back to normalized image
// coordinates, undoing the current pan, zoom and rotation. Inverse of
// ToScreen for any point while the viewer is open.
func (m *Mapper) ToNormalized(p Point) (Point, bool) {
	scale, aspect, center, w, h, ok := m.frame()
	if !ok {
		return Point{}, false
	}

	dx := p.X - w/2
	dy := p.Y - h/2

	sin, cos := math.Sincos(-m.viewer.Rotation() * math.Pi / 180)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos

	return Point{
		X: center.X + rx/scale,
		Y: center.Y + ry/(scale*aspect),
	}, true
}

// NavigateTo centers the viewer on a normalized point at the target zoom.
// Coordinates outside the unit square are rejected, the same policy as every
// other entry point; the target zoom is clamped to the viewer's usable range.
func (m *Mapper) NavigateTo(p Point, targetZoom float64, animate bool) error {
	if !m.viewer.IsOpen() {
		return apperrors.New(apperrors.ErrCodeViewerUnavailable, "viewer has no open image")
	}
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
		return apperrors.ValidationError("coordinates", "must be between 0 and 1")
	}

	if max := m.viewer.MaxZoom(); targetZoom > max {
		targetZoom = max
	}
	if targetZoom <= 0 {
		targetZoom = 1
	}

	m.viewer.PanTo(p, animate)
	m.viewer.ZoomTo(targetZoom, animate)
	return nil
}

// Track subscribes fn to every event that invalidates screen positions (pan,
// zoom, resize, open), invokes it once for the initial state, and returns a
// single disposer covering all four subscriptions.
func (m *Mapper) Track(fn func()) (dispose func()) {
	events := []Event{EventPan, EventZoom, EventResize, EventOpen}
	disposers := make([]func(), 0, len(events))
	for _, event := range events {
		disposers = append(disposers, m.viewer.Subscribe(event, fn))
	}

	fn()

	return func() {
		for _, d := range disposers {
			d()
		}
	}
}

// frame snapshots the viewer transform. ok=false when the viewer cannot answer
// coordinate queries yet.
func (m *Mapper) frame() (scale, aspect float64, center Point, w, h float64, ok bool) {
	if !m.viewer.IsOpen() {
		return 0, 0, Point{}, 0, 0, false
	}
	cw, ch := m.viewer.ContainerSize()
	zoom := m.viewer.Zoom()
	if cw <= 0 || ch <= 0 || zoom <= 0 {
		return 0, 0, Point{}, 0, 0, false
	}
	aspect = m.viewer.AspectRatio()
	if aspect <= 0 {
		aspect = 1
	}
	return float64(cw) * zoom, aspect, m.viewer.Center(), float64(cw), float64(ch), true
}
