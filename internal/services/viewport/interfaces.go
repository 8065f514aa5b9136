// Package viewport maps between normalized image coordinates and on-screen
// pixel coordinates of a pan/zoom/rotate deep-zoom viewer. The mapper depends
// only on a narrow viewer capability interface, so it works the same against
// the headless tile viewport used for export and against test fakes.
package viewport

// Point is a 2D coordinate. Whether it is normalized image space ([0,1] with
// origin top-left) or screen pixels depends on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event identifies a viewer notification the mapper can subscribe to.
type Event string

const (
	EventPan        Event = "pan"
	EventZoom       Event = "zoom"
	EventResize     Event = "resize"
	EventOpen       Event = "open"
	EventTileLoaded Event = "tile-loaded"
)

// Viewer is the capability surface the mapper needs from a deep-zoom viewer.
// Zoom is the magnification factor: at zoom 1 the full image width spans the
// container width. Rotation is in degrees, clockwise.
type Viewer interface {
	// IsOpen reports whether an image is loaded. Before open, coordinate
	// queries have no meaningful answer.
	IsOpen() bool

	Center() Point
	Zoom() float64
	MaxZoom() float64
	Rotation() float64

	// AspectRatio is image height divided by image width.
	AspectRatio() float64

	ContainerSize() (width, height int)

	PanTo(center Point, animate bool)
	ZoomTo(zoom float64, animate bool)

	// Subscribe registers fn for an event and returns a disposer that removes
	// the registration. Disposers are safe to call more than once.
	Subscribe(event Event, fn func()) (dispose func())
}
