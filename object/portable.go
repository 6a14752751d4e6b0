package object

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/tile"
)

var (
	// ErrBadSize is returned for an object less than one tile wide or high
	ErrBadSize = errors.New("object: invalid size")
	// ErrSheetTooLarge is returned when a portable sheet would need more
	// cells than a layout can address
	ErrSheetTooLarge = errors.New("object: too many tiles for a portable sheet")
)

// Metadata is the JSON sidecar of a portable object.
type Metadata struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ReplaceX    bool   `json:"replace_x,omitempty"`
	ReplaceY    bool   `json:"replace_y,omitempty"`
	Replace     []int  `json:"replace,omitempty"`
	Role        Role   `json:"role"`
	Decorative  bool   `json:"decorative,omitempty"`
	Description string `json:"description,omitempty"`
}

// Portable is an object in the portable format: a tile sheet of its own,
// metadata and a layout whose tile steps index the sheet.
type Portable struct {
	Name     string
	Metadata []byte
	Layout   []byte
	Sheet    *tile.Sheet
}

// Files returns the portable files for the object keyed by file name.
func (p *Portable) Files() (map[string][]byte, error) {
	name := p.Name
	if name == "" {
		name = "object"
	}

	img := new(bytes.Buffer)
	if err := png.Encode(img, p.Sheet.Image); err != nil {
		return nil, err
	}
	nml := new(bytes.Buffer)
	if err := png.Encode(nml, p.Sheet.Normal); err != nil {
		return nil, err
	}

	return map[string][]byte{
		name + ".png":                 img.Bytes(),
		name + "_nml.png":             nml.Bytes(),
		name + ".colls":               p.Sheet.Collisions,
		name + "." + name + ".objlyt": p.Layout,
		name + "." + name + ".json":   p.Metadata,
	}, nil
}

// FromPortable builds an object from a portable layout and metadata. Tile
// steps in slot 1 index tiles directly, the tiles having been cut from the
// object's sheet.
func FromPortable(name string, lyt, metadata []byte, tiles []*tile.Tile) (*Object, []Warning, error) {
	m := Metadata{Role: RoleUnknown}
	if err := json.Unmarshal(metadata, &m); err != nil {
		return nil, nil, fmt.Errorf("object: %s: %w", name, err)
	}
	if m.Width < 1 || m.Height < 1 {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrBadSize, m.Width, m.Height)
	}

	steps, err := layout.Parse(lyt)
	if err != nil {
		return nil, nil, err
	}

	obj := &Object{
		Name:        name,
		Description: m.Description,
		Width:       m.Width,
		Height:      m.Height,
		RandomizeX:  m.ReplaceX,
		RandomizeY:  m.ReplaceY,
		Role:        m.Role,
		Decorative:  m.Decorative,
		steps:       steps,
	}

	var warnings []Warning
	pick := func(i int) *tile.Tile {
		t := lookup(tiles, i)
		if t == nil {
			warnings = append(warnings, Warning{Object: name, Index: i})
			return tile.Unavailable
		}
		return t.Clone()
	}

	for _, t := range layout.Tiles(steps) {
		switch {
		case t.IsEmpty():
			obj.Tiles = append(obj.Tiles, nil)
		case t.Slot == 1:
			obj.Tiles = append(obj.Tiles, pick(int(t.TileNum)))
		default:
			obj.Tiles = append(obj.Tiles, pick(t.Index()))
		}
	}
	for _, i := range m.Replace {
		obj.Replacements = append(obj.Replacements, pick(i))
	}

	return obj, warnings, nil
}

// Portable converts the object to the portable format. Ceiling slopes are
// stored upside down so that they read the same way as floor slopes.
// Replacement tiles go below the object when only randomized vertically and
// to its right otherwise.
func (o *Object) Portable() (*Portable, error) {
	if o.Width < 1 || o.Height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, o.Width, o.Height)
	}

	// Tiles per row, rows end at each linefeed
	widths := []int{0}
	for _, step := range o.steps {
		switch step.(type) {
		case layout.Linefeed:
			widths = append(widths, 0)
		case layout.Tile:
			widths[len(widths)-1]++
		}
	}
	if widths[len(widths)-1] == 0 {
		widths = widths[:len(widths)-1]
	}

	rows := o.Height
	if len(widths) > rows {
		rows = len(widths)
	}
	flipY := o.IsCeilingSlope()

	positions := make([]image.Point, 0, len(o.Tiles))
	areaW, areaH := o.Width, o.Height
	x, y, adjusted := 0, 0, false
	for _, step := range o.steps {
		switch s := step.(type) {
		case layout.Linefeed:
			x, y, adjusted = 0, y+1, false
		case layout.Tile:
			ay := y
			if flipY {
				ay = rows - y - 1
			}
			positions = append(positions, image.Pt(x, ay))
			if x+1 > areaW {
				areaW = x + 1
			}
			if ay+1 > areaH {
				areaH = ay + 1
			}

			// Tiles after a repeat are pushed to the right hand edge
			if s.RepeatX && !adjusted {
				if y < len(widths) {
					x += o.Width - widths[y]
				}
				adjusted = true
			}
			x++
		}
	}

	sheetW, sheetH := areaW, areaH
	vertical := !o.RandomizeX
	if vertical {
		sheetH += len(o.Replacements)
	} else {
		sheetW += len(o.Replacements)
	}
	if sheetW*sheetH > SlotTiles {
		return nil, fmt.Errorf("%w: %dx%d", ErrSheetTooLarge, sheetW, sheetH)
	}

	sheet := tile.NewSheet(sheetW, sheetH, false)
	for i, t := range o.Tiles {
		if t != nil && i < len(positions) {
			sheet.PutAt(positions[i].X, positions[i].Y, t)
		}
	}

	m := Metadata{
		Width:       o.Width,
		Height:      o.Height,
		ReplaceX:    o.RandomizeX,
		ReplaceY:    o.RandomizeY,
		Role:        o.Role,
		Decorative:  o.Decorative,
		Description: o.Description,
	}
	for i, t := range o.Replacements {
		p := image.Pt(areaW+i, 0)
		if vertical {
			p = image.Pt(0, areaH+i)
		}
		sheet.PutAt(p.X, p.Y, t)
		m.Replace = append(m.Replace, p.Y*sheetW+p.X)
	}

	metadata, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	steps := o.mapSteps(func(i int, t layout.Tile) layout.Tile {
		if o.Tiles[i] == nil {
			return t.WithIndex(0, 0)
		}
		p := positions[i]
		return t.WithIndex(1, uint8(p.Y*sheetW+p.X))
	})

	return &Portable{
		Name:     o.Name,
		Metadata: metadata,
		Layout:   layout.Encode(steps),
		Sheet:    sheet,
	}, nil
}
