/*
Package tile implements the 60 by 60 pixel tiles that tilesets are built
from.

Each tile has a colour image, a normal map of the same size and eight bytes
of collision data. Retail tile sheets store 256 tiles as a 32 by 8 grid of 64
by 64 cells, each tile surrounded by a two pixel border copied from its
edges so that texture filtering does not bleed between neighbours. Portable
sheets store the tiles unpadded.
*/
package tile

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// Size is the width and height of a tile in pixels
	Size = 60
	// PaddedSize is the size of a tile cell in a retail sheet
	PaddedSize = 64
	// Padding is the border around a tile in a retail sheet
	Padding = (PaddedSize - Size) / 2
	// CollisionSize is the number of collision bytes per tile
	CollisionSize = 8

	// MaxEmptyAlpha is the highest alpha a pixel can have in an empty tile
	MaxEmptyAlpha = 2
	// MaxChannelDelta is the largest per channel difference tolerated
	// between two pixels of identical images
	MaxChannelDelta = 2
)

var (
	// DefaultImageColor fills the image of a tile that has none
	DefaultImageColor = color.NRGBA{0, 0, 0, 0}
	// DefaultNormalColor fills the normal map of a tile that has none
	DefaultNormalColor = color.NRGBA{128, 127, 255, 255}
)

// Tile is a single tile.
type Tile struct {
	Image      *image.NRGBA
	Normal     *image.NRGBA
	Collisions [CollisionSize]byte
}

// Unavailable stands in for a tile that a layout refers to but that no
// loaded tileset provides. It is compared by identity.
var Unavailable = &Tile{}

// New returns a tile holding copies of img, normal and collisions. Either
// image may be nil, in which case the default colour is used.
func New(img, normal image.Image, collisions []byte) *Tile {
	t := new(Tile)
	if img != nil {
		t.Image = imaging.Clone(img)
	}
	if normal != nil {
		t.Normal = imaging.Clone(normal)
	}
	copy(t.Collisions[:], collisions)
	return t
}

// Clone returns a deep copy of t.
func (t *Tile) Clone() *Tile {
	if t == nil {
		return nil
	}
	c := &Tile{Collisions: t.Collisions}
	if t.Image != nil {
		c.Image = imaging.Clone(t.Image)
	}
	if t.Normal != nil {
		c.Normal = imaging.Clone(t.Normal)
	}
	return c
}

// ColorImage returns the tile image, or a blank one if it has none.
func (t *Tile) ColorImage() *image.NRGBA {
	if t == nil || t.Image == nil {
		return imaging.New(Size, Size, DefaultImageColor)
	}
	return t.Image
}

// NormalImage returns the tile normal map, or a flat one if it has none.
func (t *Tile) NormalImage() *image.NRGBA {
	if t == nil || t.Normal == nil {
		return imaging.New(Size, Size, DefaultNormalColor)
	}
	return t.Normal
}

// IsEmpty reports whether the tile has no collisions and no visible pixels.
func (t *Tile) IsEmpty() bool {
	if t == nil || t == Unavailable {
		return true
	}
	if t.Collisions != [CollisionSize]byte{} {
		return false
	}
	if t.Image == nil {
		return true
	}
	b := t.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if t.Image.NRGBAAt(x, y).A > MaxEmptyAlpha {
				return false
			}
		}
	}
	return true
}

// Equal reports whether a and b have the same collisions and identical
// images and normal maps. A nil tile equals a blank one.
func Equal(a, b *Tile) bool {
	if a == b {
		return true
	}
	var ca, cb [CollisionSize]byte
	if a != nil {
		ca = a.Collisions
	}
	if b != nil {
		cb = b.Collisions
	}
	if ca != cb {
		return false
	}
	return ImagesIdentical(a.ColorImage(), b.ColorImage()) && ImagesIdentical(a.NormalImage(), b.NormalImage())
}

func abs(d int) int {
	if d < 0 {
		return -d
	}
	return d
}

func toNRGBA(m image.Image) *image.NRGBA {
	if n, ok := m.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(m)
}

// ImagesIdentical reports whether a and b are the same size and every pixel
// matches within MaxChannelDelta. Pixels transparent in both are skipped.
func ImagesIdentical(a, b image.Image) bool {
	na, nb := toNRGBA(a), toNRGBA(b)
	if na.Rect.Size() != nb.Rect.Size() {
		return false
	}
	for y := 0; y < na.Rect.Dy(); y++ {
		for x := 0; x < na.Rect.Dx(); x++ {
			ca, cb := na.NRGBAAt(x, y), nb.NRGBAAt(x, y)
			if ca.A < MaxEmptyAlpha && cb.A < MaxEmptyAlpha {
				continue
			}
			if abs(int(ca.R)-int(cb.R)) > MaxChannelDelta ||
				abs(int(ca.G)-int(cb.G)) > MaxChannelDelta ||
				abs(int(ca.B)-int(cb.B)) > MaxChannelDelta ||
				abs(int(ca.A)-int(cb.A)) > MaxChannelDelta {
				return false
			}
		}
	}
	return true
}
