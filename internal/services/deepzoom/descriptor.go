// Package deepzoom reads Deep Zoom Image (DZI) tile pyramids and provides a
// headless viewport over them: pan/zoom state, viewer events and frame
// rendering, without a browser. The export pipeline drives it to reproduce the
// view a user saw when an annotation was created.
package deepzoom

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
)

// Descriptor holds the pyramid geometry of one DZI image.
type Descriptor struct {
	Width    int
	Height   int
	TileSize int
	Overlap  int
	Format   string
}

// dziImage mirrors the DZI descriptor XML:
//
//	<Image TileSize="254" Overlap="1" Format="jpeg" xmlns="...">
//	  <Size Width="42208" Height="9870"/>
//	</Image>
type dziImage struct {
	XMLName  xml.Name `xml:"Image"`
	TileSize int      `xml:"TileSize,attr"`
	Overlap  int      `xml:"Overlap,attr"`
	Format   string   `xml:"Format,attr"`
	Size     struct {
		Width  int `xml:"Width,attr"`
		Height int `xml:"Height,attr"`
	} `xml:"Size"`
}

// ParseDescriptor reads a DZI descriptor document.
func ParseDescriptor(r io.Reader) (*Descriptor, error) {
	var doc dziImage
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing DZI descriptor: %w", err)
	}

	desc := &Descriptor{
		Width:    doc.Size.Width,
		Height:   doc.Size.Height,
		TileSize: doc.TileSize,
		Overlap:  doc.Overlap,
		Format:   doc.Format,
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid DZI descriptor: size %dx%d", desc.Width, desc.Height)
	}
	if desc.TileSize <= 0 {
		return nil, fmt.Errorf("invalid DZI descriptor: tile size %d", desc.TileSize)
	}
	if desc.Format == "" {
		desc.Format = "jpeg"
	}
	return desc, nil
}

// LoadDescriptor reads a DZI descriptor from disk.
func LoadDescriptor(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening DZI descriptor: %w", err)
	}
	defer f.Close()
	return ParseDescriptor(f)
}

// MaxLevel returns the deepest pyramid level. Level 0 holds a single pixel in
// the longer dimension; MaxLevel holds the full-resolution image.
func (d *Descriptor) MaxLevel() int {
	longest := d.Width
	if d.Height > longest {
		longest = d.Height
	}
	return int(math.Ceil(math.Log2(float64(longest))))
}

// LevelDimensions returns the image size at a pyramid level. Each level halves
// the previous one, rounding up.
func (d *Descriptor) LevelDimensions(level int) (width, height int) {
	scale := math.Pow(2, float64(d.MaxLevel()-level))
	width = int(math.Ceil(float64(d.Width) / scale))
	height = int(math.Ceil(float64(d.Height) / scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// TileGrid returns the number of tile columns and rows at a level.
func (d *Descriptor) TileGrid(level int) (cols, rows int) {
	width, height := d.LevelDimensions(level)
	cols = (width + d.TileSize - 1) / d.TileSize
	rows = (height + d.TileSize - 1) / d.TileSize
	return cols, rows
}

// AspectRatio is image height divided by image width.
func (d *Descriptor) AspectRatio() float64 {
	return float64(d.Height) / float64(d.Width)
}
