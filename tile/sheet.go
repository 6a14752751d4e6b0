package tile

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

const (
	// SheetColumns is the number of tile columns in a retail sheet
	SheetColumns = 32
	// SheetRows is the number of tile rows in a retail sheet
	SheetRows = 8
	// SheetTiles is the number of tiles in a retail sheet
	SheetTiles = SheetColumns * SheetRows
)

var (
	errNoImage      = errors.New("tile: no image")
	errSizeMismatch = errors.New("tile: image and normal map differ in size")
)

// Sheet is a grid of tiles held as one image, one normal map and a
// collision table with eight bytes per cell.
type Sheet struct {
	Image      *image.NRGBA
	Normal     *image.NRGBA
	Collisions []byte
	Columns    int
	Rows       int
	Padded     bool
}

func cellSize(padded bool) int {
	if padded {
		return PaddedSize
	}
	return Size
}

// NewSheet returns a transparent sheet of columns by rows cells.
func NewSheet(columns, rows int, padded bool) *Sheet {
	n := cellSize(padded)
	return &Sheet{
		Image:      imaging.New(columns*n, rows*n, DefaultImageColor),
		Normal:     imaging.New(columns*n, rows*n, DefaultImageColor),
		Collisions: make([]byte, columns*rows*CollisionSize),
		Columns:    columns,
		Rows:       rows,
		Padded:     padded,
	}
}

// NewRetailSheet returns an empty 32 by 8 padded sheet.
func NewRetailSheet() *Sheet {
	return NewSheet(SheetColumns, SheetRows, true)
}

// Len returns the number of cells in the sheet.
func (s *Sheet) Len() int {
	return s.Columns * s.Rows
}

func (s *Sheet) origin(i int) image.Point {
	n := cellSize(s.Padded)
	return image.Pt(i%s.Columns*n, i/s.Columns*n)
}

// Put draws t into cell i. A nil tile leaves the cell untouched.
func (s *Sheet) Put(i int, t *Tile) {
	if t == nil || i < 0 || i >= s.Len() {
		return
	}
	img, nml := t.ColorImage(), t.NormalImage()
	if s.Padded {
		img, nml = AddPadding(img), AddPadding(nml)
	}
	p := s.origin(i)
	draw.Draw(s.Image, img.Bounds().Add(p), img, img.Bounds().Min, draw.Src)
	draw.Draw(s.Normal, nml.Bounds().Add(p), nml, nml.Bounds().Min, draw.Src)
	copy(s.Collisions[i*CollisionSize:], t.Collisions[:])
}

// PutAt draws t into the cell at column x, row y.
func (s *Sheet) PutAt(x, y int, t *Tile) {
	if x < 0 || x >= s.Columns {
		return
	}
	s.Put(y*s.Columns+x, t)
}

// At returns a copy of the tile in cell i.
func (s *Sheet) At(i int) *Tile {
	p := s.origin(i)
	if s.Padded {
		p = p.Add(image.Pt(Padding, Padding))
	}
	r := image.Rect(p.X, p.Y, p.X+Size, p.Y+Size)
	t := &Tile{
		Image:  imaging.Crop(s.Image, r),
		Normal: imaging.Crop(s.Normal, r),
	}
	if off := i * CollisionSize; off < len(s.Collisions) {
		copy(t.Collisions[:], s.Collisions[off:])
	}
	return t
}

// Tiles returns a copy of every tile in the sheet, row by row.
func (s *Sheet) Tiles() []*Tile {
	tiles := make([]*Tile, s.Len())
	for i := range tiles {
		tiles[i] = s.At(i)
	}
	return tiles
}

// Split cuts img and normal into tiles, row by row. Missing collision bytes
// read as zero and a nil normal map reads as flat.
func Split(img, normal image.Image, collisions []byte, padded bool) ([]*Tile, error) {
	if img == nil {
		return nil, errNoImage
	}
	n := cellSize(padded)
	b := img.Bounds()
	s := &Sheet{
		Image:      imaging.Clone(img),
		Collisions: collisions,
		Columns:    b.Dx() / n,
		Rows:       b.Dy() / n,
		Padded:     padded,
	}
	if normal != nil {
		if normal.Bounds().Size() != b.Size() {
			return nil, fmt.Errorf("%w: %v and %v", errSizeMismatch, b.Size(), normal.Bounds().Size())
		}
		s.Normal = imaging.Clone(normal)
	} else {
		s.Normal = imaging.New(b.Dx(), b.Dy(), DefaultNormalColor)
	}
	return s.Tiles(), nil
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// AddPadding returns a 64 by 64 copy of a 60 by 60 tile image with the edge
// pixels repeated into the border.
func AddPadding(m image.Image) *image.NRGBA {
	src := toNRGBA(m)
	dst := image.NewNRGBA(image.Rect(0, 0, PaddedSize, PaddedSize))
	maxX, maxY := src.Rect.Dx()-1, src.Rect.Dy()-1
	if maxX < 0 || maxY < 0 {
		return dst
	}
	for y := 0; y < PaddedSize; y++ {
		sy := clamp(y-Padding, 0, maxY)
		for x := 0; x < PaddedSize; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(clamp(x-Padding, 0, maxX), sy))
		}
	}
	return dst
}
