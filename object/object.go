/*
Package object implements tileset objects: a layout, the tiles it refers to
and the metadata describing how the object is used.

Objects own their tiles. Loading an object copies every tile it uses so that
editing one object never changes another.
*/
package object

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/tile"
)

// ErrTileCount is returned when the number of tiles does not match the
// number of tile steps in a layout.
var ErrTileCount = errors.New("object: tile count does not match layout")

// Object is a tileset object.
type Object struct {
	Name        string
	Description string
	Width       int
	Height      int
	RandomizeX  bool
	RandomizeY  bool
	Role        Role
	Decorative  bool

	// Tiles holds one entry per tile step of the layout, in order. Empty
	// steps are nil.
	Tiles []*tile.Tile
	// Replacements are drawn at random in place of the first tile
	Replacements []*tile.Tile

	steps []layout.Step
}

// New returns an object of the given size with layout steps and one tile
// per tile step. The role defaults to RoleUnknown.
func New(steps []layout.Step, tiles []*tile.Tile, width, height int) (*Object, error) {
	if n := len(layout.Tiles(steps)); n != len(tiles) {
		return nil, fmt.Errorf("%w: %d steps, %d tiles", ErrTileCount, n, len(tiles))
	}
	return &Object{
		Width:  width,
		Height: height,
		Role:   RoleUnknown,
		Tiles:  append([]*tile.Tile(nil), tiles...),
		steps:  append([]layout.Step(nil), steps...),
	}, nil
}

func (o *Object) String() string {
	return fmt.Sprintf("<Object: %dx%d %q>", o.Width, o.Height, o.Name)
}

// Steps returns a copy of the layout steps. Tile numbers in tile steps are
// not meaningful, the tile for the n-th tile step is Tiles[n].
func (o *Object) Steps() []layout.Step {
	return append([]layout.Step(nil), o.steps...)
}

// Layout returns the layout bytecode with every non-empty tile step
// renumbered to the 1-based position of its tile in Tiles. Empty steps
// refer to tile 0 of slot 0.
func (o *Object) Layout() []byte {
	return layout.Encode(o.mapSteps(func(i int, t layout.Tile) layout.Tile {
		if o.Tiles[i] == nil {
			return t.WithIndex(0, 0)
		}
		n := i + 1
		return t.WithIndex(uint8(n>>8), uint8(n))
	}))
}

// mapSteps returns the steps with every tile step replaced by f, which is
// given the ordinal of the tile step.
func (o *Object) mapSteps(f func(int, layout.Tile) layout.Tile) []layout.Step {
	steps := make([]layout.Step, len(o.steps))
	i := 0
	for j, step := range o.steps {
		if t, ok := step.(layout.Tile); ok {
			steps[j] = f(i, t)
			i++
			continue
		}
		steps[j] = step
	}
	return steps
}

// IsCeilingSlope reports whether the layout contains a ceiling slope.
func (o *Object) IsCeilingSlope() bool {
	for _, step := range o.steps {
		if s, ok := step.(layout.Slope); ok && !s.Floor {
			return true
		}
	}
	return false
}

// Render lays the object out over a width by height area. A size less than
// one uses the object's own size. Cells are nil where nothing is drawn.
func (o *Object) Render(width, height int) [][]*tile.Tile {
	if width < 1 {
		width = o.Width
	}
	if height < 1 {
		height = o.Height
	}

	g := layout.Render(o.steps, width, height, layout.WithCellFunc(func(i int, _ layout.Tile) int {
		return i
	}))

	out := make([][]*tile.Tile, len(g))
	for y, row := range g {
		out[y] = make([]*tile.Tile, len(row))
		for x, i := range row {
			if i != layout.Empty && i < len(o.Tiles) {
				out[y][x] = o.Tiles[i]
			}
		}
	}
	return out
}

// AllTiles returns every distinct tile the object uses, in layout order,
// followed by the replacement tiles. Tiles are distinct by identity and a
// nil entry appears at most once.
func (o *Object) AllTiles() []*tile.Tile {
	var out []*tile.Tile
	seen := make(map[*tile.Tile]bool)
	for _, list := range [][]*tile.Tile{o.Tiles, o.Replacements} {
		for _, t := range list {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether a and b are the same object, ignoring their names.
func Equal(a, b *Object) bool {
	if a.Width != b.Width || a.Height != b.Height || a.RandomizeX != b.RandomizeX || a.RandomizeY != b.RandomizeY {
		return false
	}
	ta, tb := a.AllTiles(), b.AllTiles()
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if !tile.Equal(ta[i], tb[i]) {
			return false
		}
	}
	return true
}

// Less orders objects by role, then non-decorative before decorative, then
// by area, then for slopes outward before inward before none, and finally by
// name.
func Less(a, b *Object) bool {
	if ra, rb := a.Role.Rank(), b.Role.Rank(); ra != rb {
		return ra < rb
	}
	if a.Decorative != b.Decorative {
		return !a.Decorative
	}
	if sa, sb := a.Width*a.Height, b.Width*b.Height; sa != sb {
		return sa < sb
	}
	if a.Role.IsSlope() {
		if sa, sb := slopeRank(a), slopeRank(b); sa != sb {
			return sa < sb
		}
	}
	return a.Name < b.Name
}

// slopeRank orders outward slopes, then inward slopes, then layouts without
// a slope.
func slopeRank(o *Object) int {
	s, ok := layout.FirstSlope(o.steps)
	switch {
	case !ok:
		return 2
	case s.Outward:
		return 0
	default:
		return 1
	}
}

// Sort sorts objects in place using Less.
func Sort(objs []*Object) {
	sort.SliceStable(objs, func(i, j int) bool { return Less(objs[i], objs[j]) })
}
