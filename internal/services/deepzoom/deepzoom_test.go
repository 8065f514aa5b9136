package deepzoom

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmic-canvas/canvas-api/internal/services/viewport"
)

const sampleDZI = `<?xml version="1.0" encoding="utf-8"?>
<Image TileSize="254" Overlap="1" Format="jpeg" xmlns="http://schemas.microsoft.com/deepzoom/2008">
  <Size Width="42208" Height="9870"/>
</Image>`

func TestParseDescriptor(t *testing.T) {
	desc, err := ParseDescriptor(strings.NewReader(sampleDZI))
	require.NoError(t, err)

	assert.Equal(t, 42208, desc.Width)
	assert.Equal(t, 9870, desc.Height)
	assert.Equal(t, 254, desc.TileSize)
	assert.Equal(t, 1, desc.Overlap)
	assert.Equal(t, "jpeg", desc.Format)
	assert.Equal(t, 16, desc.MaxLevel()) // ceil(log2(42208))
	assert.InDelta(t, 9870.0/42208.0, desc.AspectRatio(), 1e-12)
}

func TestParseDescriptorRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "nope"},
		{"zero size", `<Image TileSize="254" Overlap="1" Format="jpeg"><Size Width="0" Height="10"/></Image>`},
		{"zero tile size", `<Image TileSize="0" Overlap="1" Format="jpeg"><Size Width="10" Height="10"/></Image>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDescriptorLevelMath(t *testing.T) {
	desc, err := ParseDescriptor(strings.NewReader(sampleDZI))
	require.NoError(t, err)

	w, h := desc.LevelDimensions(desc.MaxLevel())
	assert.Equal(t, 42208, w)
	assert.Equal(t, 9870, h)

	w, h = desc.LevelDimensions(desc.MaxLevel() - 1)
	assert.Equal(t, 21104, w)
	assert.Equal(t, 4935, h)

	w, h = desc.LevelDimensions(0)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	cols, rows := desc.TileGrid(desc.MaxLevel())
	assert.Equal(t, 167, cols) // ceil(42208/254)
	assert.Equal(t, 39, rows)  // ceil(9870/254)
}

// tileColor gives every tile of the test pyramid a distinct solid color.
func tileColor(level, col, row int) color.RGBA {
	return color.RGBA{
		R: uint8(40 * (col + 1)),
		G: uint8(40 * (row + 1)),
		B: uint8(30 * (level + 1)),
		A: 255,
	}
}

// writeTestPyramid writes a small DZI pyramid (8x8 image, 4px tiles, no
// overlap) and returns the descriptor path.
func writeTestPyramid(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	dziPath := filepath.Join(root, "nebula.dzi")
	dzi := `<?xml version="1.0" encoding="utf-8"?>
<Image TileSize="4" Overlap="0" Format="png" xmlns="http://schemas.microsoft.com/deepzoom/2008">
  <Size Width="8" Height="8"/>
</Image>`
	require.NoError(t, os.WriteFile(dziPath, []byte(dzi), 0o644))

	desc := &Descriptor{Width: 8, Height: 8, TileSize: 4, Overlap: 0, Format: "png"}
	for level := 0; level <= desc.MaxLevel(); level++ {
		levelW, levelH := desc.LevelDimensions(level)
		cols, rows := desc.TileGrid(level)
		levelDir := filepath.Join(root, "nebula_files", strconv.Itoa(level))
		require.NoError(t, os.MkdirAll(levelDir, 0o755))

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				tw := desc.TileSize
				if (col+1)*desc.TileSize > levelW {
					tw = levelW - col*desc.TileSize
				}
				th := desc.TileSize
				if (row+1)*desc.TileSize > levelH {
					th = levelH - row*desc.TileSize
				}

				tile := image.NewRGBA(image.Rect(0, 0, tw, th))
				fill := tileColor(level, col, row)
				for y := 0; y < th; y++ {
					for x := 0; x < tw; x++ {
						tile.SetRGBA(x, y, fill)
					}
				}

				f, err := os.Create(filepath.Join(levelDir, strconv.Itoa(col)+"_"+strconv.Itoa(row)+".png"))
				require.NoError(t, err)
				require.NoError(t, png.Encode(f, tile))
				require.NoError(t, f.Close())
			}
		}
	}
	return dziPath
}

func TestTileSource(t *testing.T) {
	source, err := OpenTileSource(writeTestPyramid(t))
	require.NoError(t, err)

	desc := source.Descriptor()
	assert.Equal(t, 3, desc.MaxLevel())

	tile, err := source.LoadTile(3, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, tile.Bounds().Dx())

	_, err = source.LoadTile(3, 9, 0)
	assert.Error(t, err, "tile outside the grid")
	_, err = source.LoadTile(99, 0, 0)
	assert.Error(t, err, "level outside the pyramid")
}

func TestViewportTransformStateAndEvents(t *testing.T) {
	source, err := OpenTileSource(writeTestPyramid(t))
	require.NoError(t, err)
	vp := NewViewport(source, 100, 100)

	assert.False(t, vp.IsOpen())
	_, err = vp.RenderFrame()
	require.Error(t, err, "render before open")

	var events []viewport.Event
	for _, e := range []viewport.Event{viewport.EventOpen, viewport.EventPan, viewport.EventZoom, viewport.EventResize} {
		event := e
		vp.Subscribe(event, func() { events = append(events, event) })
	}

	vp.Open()
	vp.PanTo(viewport.Point{X: 0.25, Y: 0.25}, false)
	vp.ZoomTo(0.5, false)
	vp.Resize(120, 90)

	assert.Equal(t, []viewport.Event{viewport.EventOpen, viewport.EventPan, viewport.EventZoom, viewport.EventResize}, events)
	assert.Equal(t, viewport.Point{X: 0.25, Y: 0.25}, vp.Center())
	assert.Equal(t, 0.5, vp.Zoom())

	w, h := vp.ContainerSize()
	assert.Equal(t, 120, w)
	assert.Equal(t, 90, h)

	t.Run("zoom clamps to usable range", func(t *testing.T) {
		vp.ZoomTo(1e9, false)
		assert.Equal(t, vp.MaxZoom(), vp.Zoom())
		vp.ZoomTo(-1, false)
		assert.Equal(t, minZoom, vp.Zoom())
	})

	t.Run("disposer stops delivery", func(t *testing.T) {
		calls := 0
		dispose := vp.Subscribe(viewport.EventPan, func() { calls++ })
		vp.PanTo(viewport.Point{X: 0.5, Y: 0.5}, false)
		dispose()
		vp.PanTo(viewport.Point{X: 0.6, Y: 0.5}, false)
		assert.Equal(t, 1, calls)
	})
}

func TestViewportRenderFrame(t *testing.T) {
	source, err := OpenTileSource(writeTestPyramid(t))
	require.NoError(t, err)
	vp := NewViewport(source, 100, 100)
	vp.Open()

	tiles := 0
	vp.Subscribe(viewport.EventTileLoaded, func() { tiles++ })

	frame, err := vp.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, 100, frame.Bounds().Dx())
	assert.Equal(t, 100, frame.Bounds().Dy())
	assert.Equal(t, 4, tiles, "whole image visible at zoom 1 needs all four deepest tiles")

	// Quadrants carry their tile's color.
	assert.Equal(t, tileColor(3, 0, 0), frame.RGBAAt(25, 25))
	assert.Equal(t, tileColor(3, 1, 0), frame.RGBAAt(75, 25))
	assert.Equal(t, tileColor(3, 0, 1), frame.RGBAAt(25, 75))
	assert.Equal(t, tileColor(3, 1, 1), frame.RGBAAt(75, 75))

	// The rendered frame is available through Frame.
	cached, err := vp.Frame()
	require.NoError(t, err)
	assert.Equal(t, frame, cached)

	t.Run("panned view centers on the target quadrant", func(t *testing.T) {
		vp.PanTo(viewport.Point{X: 0.25, Y: 0.25}, false)

		frame, err := vp.RenderFrame()
		require.NoError(t, err)
		assert.Equal(t, tileColor(3, 0, 0), frame.RGBAAt(50, 50), "center shows the north-west tile")
	})
}
