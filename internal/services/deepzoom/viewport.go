package deepzoom

import (
	"image"
	"log"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/cosmic-canvas/canvas-api/internal/services/viewport"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// minZoom keeps the viewport from collapsing to a degenerate transform.
const minZoom = 0.01

// Viewport is a headless deep-zoom viewer over one tile pyramid. It carries
// the same transform state a browser viewer would (center, zoom, rotation,
// container size), emits the same events, and renders the currently visible
// region into an RGBA frame on demand.
//
// The export pipeline assumes exclusive control of a viewport while it runs;
// there is no transform-ownership arbitration between concurrent drivers.
type Viewport struct {
	source *TileSource

	mu       sync.Mutex
	width    int
	height   int
	center   viewport.Point
	zoom     float64
	rotation float64
	open     bool

	frame     *image.RGBA
	rendering sync.Mutex

	handlerMu sync.Mutex
	nextID    int
	handlers  map[viewport.Event]map[int]func()
}

// NewViewport creates a closed viewport over a tile source with the given
// container size in pixels. Call Open before querying coordinates or frames.
func NewViewport(source *TileSource, width, height int) *Viewport {
	return &Viewport{
		source:   source,
		width:    width,
		height:   height,
		center:   viewport.Point{X: 0.5, Y: 0.5},
		zoom:     1,
		handlers: make(map[viewport.Event]map[int]func()),
	}
}

// Open marks the image as loaded and notifies open subscribers.
func (v *Viewport) Open() {
	v.mu.Lock()
	v.open = true
	v.mu.Unlock()
	v.emit(viewport.EventOpen)
}

// IsOpen reports whether the image has been opened.
func (v *Viewport) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Center returns the normalized image point at the container center.
func (v *Viewport) Center() viewport.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}

// Zoom returns the current magnification factor.
func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// MaxZoom is the magnification at which one image pixel maps to one container
// pixel, never below 1 so small images remain navigable.
func (v *Viewport) MaxZoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	max := float64(v.source.Descriptor().Width) / float64(v.width)
	if max < 1 {
		max = 1
	}
	return max
}

// Rotation returns the current rotation in degrees.
func (v *Viewport) Rotation() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rotation
}

// AspectRatio is image height divided by image width.
func (v *Viewport) AspectRatio() float64 {
	return v.source.Descriptor().AspectRatio()
}

// ContainerSize returns the container dimensions in pixels.
func (v *Viewport) ContainerSize() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// PanTo moves the viewport center. The animate flag is accepted for interface
// parity; the headless viewport always applies transforms immediately.
func (v *Viewport) PanTo(center viewport.Point, _ bool) {
	v.mu.Lock()
	v.center = center
	v.mu.Unlock()
	v.emit(viewport.EventPan)
}

// ZoomTo sets the magnification, clamped to the usable range.
func (v *Viewport) ZoomTo(zoom float64, _ bool) {
	max := v.MaxZoom()
	if zoom > max {
		zoom = max
	}
	if zoom < minZoom {
		zoom = minZoom
	}
	v.mu.Lock()
	v.zoom = zoom
	v.mu.Unlock()
	v.emit(viewport.EventZoom)
}

// SetRotation sets the viewport rotation in degrees.
func (v *Viewport) SetRotation(degrees float64) {
	v.mu.Lock()
	v.rotation = degrees
	v.mu.Unlock()
	v.emit(viewport.EventPan)
}

// Resize changes the container size and notifies resize subscribers.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	v.width = width
	v.height = height
	v.mu.Unlock()
	v.emit(viewport.EventResize)
}

// Subscribe registers fn for an event and returns a disposer.
func (v *Viewport) Subscribe(event viewport.Event, fn func()) func() {
	v.handlerMu.Lock()
	defer v.handlerMu.Unlock()

	if v.handlers[event] == nil {
		v.handlers[event] = make(map[int]func())
	}
	id := v.nextID
	v.nextID++
	v.handlers[event][id] = fn

	return func() {
		v.handlerMu.Lock()
		defer v.handlerMu.Unlock()
		delete(v.handlers[event], id)
	}
}

func (v *Viewport) emit(event viewport.Event) {
	v.handlerMu.Lock()
	fns := make([]func(), 0, len(v.handlers[event]))
	for _, fn := range v.handlers[event] {
		fns = append(fns, fn)
	}
	v.handlerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ForceRedraw renders the current view in the background, emitting one
// tile-loaded event per tile composed. The finished frame becomes available
// through Frame.
func (v *Viewport) ForceRedraw() {
	go func() {
		if _, err := v.RenderFrame(); err != nil {
			log.Printf("deepzoom: background render failed: %v", err)
		}
	}()
}

// Frame returns the most recently rendered frame.
func (v *Viewport) Frame() (*image.RGBA, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.frame == nil {
		return nil, apperrors.New(apperrors.ErrCodeViewerUnavailable, "no frame rendered yet")
	}
	return v.frame, nil
}

// RenderFrame composes the visible region from the best-fitting pyramid level
// into a container-sized RGBA frame. Rotation applies to coordinate mapping
// only, not to frame rendering; export captures are taken unrotated.
func (v *Viewport) RenderFrame() (*image.RGBA, error) {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeViewerUnavailable, "viewer has no open image")
	}
	width, height := v.width, v.height
	center, zoom := v.center, v.zoom
	v.mu.Unlock()

	// One render at a time; transforms applied mid-render land in the next one.
	v.rendering.Lock()
	defer v.rendering.Unlock()

	desc := v.source.Descriptor()
	level := v.pickLevel(width, zoom)
	levelW, levelH := desc.LevelDimensions(level)

	// Screen pixels per level pixel. The full image spans width*zoom screen
	// pixels, and levelW level pixels.
	f := float64(width) * zoom / float64(levelW)

	// Visible rect in level pixel space.
	x0 := center.X*float64(levelW) - float64(width)/(2*f)
	x1 := center.X*float64(levelW) + float64(width)/(2*f)
	y0 := center.Y*float64(levelH) - float64(height)/(2*f)
	y1 := center.Y*float64(levelH) + float64(height)/(2*f)

	cols, rows := desc.TileGrid(level)
	firstCol := clampInt(int(math.Floor(x0/float64(desc.TileSize))), 0, cols-1)
	lastCol := clampInt(int(math.Floor(x1/float64(desc.TileSize))), 0, cols-1)
	firstRow := clampInt(int(math.Floor(y0/float64(desc.TileSize))), 0, rows-1)
	lastRow := clampInt(int(math.Floor(y1/float64(desc.TileSize))), 0, rows-1)

	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	for row := firstRow; row <= lastRow; row++ {
		for col := firstCol; col <= lastCol; col++ {
			tile, err := v.source.LoadTile(level, col, row)
			if err != nil {
				log.Printf("deepzoom: skipping tile %d/%d_%d: %v", level, col, row, err)
				continue
			}

			tx, ty := v.source.TileOrigin(col, row)
			bounds := tile.Bounds()
			dest := image.Rect(
				int(math.Round((float64(tx)-x0)*f)),
				int(math.Round((float64(ty)-y0)*f)),
				int(math.Round((float64(tx)+float64(bounds.Dx())-x0)*f)),
				int(math.Round((float64(ty)+float64(bounds.Dy())-y0)*f)),
			)
			xdraw.ApproxBiLinear.Scale(frame, dest, tile, bounds, xdraw.Over, nil)
			v.emit(viewport.EventTileLoaded)
		}
	}

	v.mu.Lock()
	v.frame = frame
	v.mu.Unlock()
	return frame, nil
}

// pickLevel chooses the smallest pyramid level that still covers the displayed
// resolution, so renders never upscale more than one level's worth.
func (v *Viewport) pickLevel(containerWidth int, zoom float64) int {
	desc := v.source.Descriptor()
	displayed := float64(containerWidth) * zoom
	for level := 0; level <= desc.MaxLevel(); level++ {
		levelW, _ := desc.LevelDimensions(level)
		if float64(levelW) >= displayed {
			return level
		}
	}
	return desc.MaxLevel()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
