package deepzoom

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Tile decoders for the formats the tiling pipeline emits.
	_ "image/jpeg"
	_ "image/png"
)

// TileSource reads tiles of one DZI pyramid from disk. The on-disk layout is
// the standard one produced by DZI tilers:
//
//	<name>.dzi
//	<name>_files/<level>/<col>_<row>.<format>
type TileSource struct {
	desc     *Descriptor
	filesDir string
}

// OpenTileSource parses the descriptor at dziPath and prepares tile access.
func OpenTileSource(dziPath string) (*TileSource, error) {
	desc, err := LoadDescriptor(dziPath)
	if err != nil {
		return nil, err
	}
	return &TileSource{
		desc:     desc,
		filesDir: strings.TrimSuffix(dziPath, filepath.Ext(dziPath)) + "_files",
	}, nil
}

// Descriptor returns the pyramid geometry.
func (ts *TileSource) Descriptor() *Descriptor {
	return ts.desc
}

// TilePath returns the on-disk path of one tile.
func (ts *TileSource) TilePath(level, col, row int) string {
	name := fmt.Sprintf("%d_%d.%s", col, row, ts.desc.Format)
	return filepath.Join(ts.filesDir, fmt.Sprintf("%d", level), name)
}

// LoadTile reads and decodes one tile.
func (ts *TileSource) LoadTile(level, col, row int) (image.Image, error) {
	cols, rows := ts.desc.TileGrid(level)
	if level < 0 || level > ts.desc.MaxLevel() || col < 0 || col >= cols || row < 0 || row >= rows {
		return nil, fmt.Errorf("tile %d/%d_%d out of range", level, col, row)
	}

	f, err := os.Open(ts.TilePath(level, col, row))
	if err != nil {
		return nil, fmt.Errorf("opening tile %d/%d_%d: %w", level, col, row, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %d/%d_%d: %w", level, col, row, err)
	}
	return img, nil
}

// TileOrigin returns the position of a tile's top-left pixel within its level,
// accounting for the shared overlap border on non-edge tiles.
func (ts *TileSource) TileOrigin(col, row int) (x, y int) {
	x = col * ts.desc.TileSize
	y = row * ts.desc.TileSize
	if col > 0 {
		x -= ts.desc.Overlap
	}
	if row > 0 {
		y -= ts.desc.Overlap
	}
	return x, y
}
