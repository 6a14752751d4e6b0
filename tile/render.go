package tile

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
)

// Compose draws a grid of tiles, indexed [y][x], into a single image with
// one 60 pixel cell per tile. Nil cells are left transparent.
func Compose(grid [][]*Tile) *image.NRGBA {
	h := len(grid)
	w := 0
	if h > 0 {
		w = len(grid[0])
	}

	m := imaging.New(w*Size, h*Size, DefaultImageColor)
	for y, row := range grid {
		for x, t := range row {
			if t == nil {
				continue
			}
			img := t.ColorImage()
			draw.Draw(m, img.Bounds().Add(image.Pt(x*Size, y*Size)), img, img.Bounds().Min, draw.Src)
		}
	}
	return m
}

// Paletted reduces m to at most colors colours using a median cut
// quantizer.
func Paletted(m image.Image, colors int) *image.Paletted {
	b := m.Bounds()
	if b.Empty() {
		return image.NewPaletted(image.Rect(0, 0, 0, 0), color.Palette{DefaultImageColor})
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return pm
}
