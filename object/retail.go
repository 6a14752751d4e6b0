package object

import (
	"fmt"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/tile"
)

// SlotTiles is the number of tiles in each tileset slot and Slots the
// number of slots, giving 1024 addressable tiles.
const (
	SlotTiles = 256
	Slots     = 4
)

// Warning reports a layout step referring to a tile that none of the loaded
// tilesets provide. The step is drawn with tile.Unavailable instead.
type Warning struct {
	Object string
	Index  int
}

func (w Warning) String() string {
	if w.Object == "" {
		return fmt.Sprintf("cannot find tile %#x", w.Index)
	}
	return fmt.Sprintf("cannot find tile %#x for %s", w.Index, w.Object)
}

// Retail describes an object as stored in a retail tileset.
type Retail struct {
	Name       string
	Layout     []byte
	Width      int
	Height     int
	RandomizeX bool
	RandomizeY bool
	// Variants is the number of interchangeable tiles, counting the first
	// tile itself
	Variants int
}

type retailOptions struct {
	lenient bool
}

// RetailOption configures FromRetail
type RetailOption func(*retailOptions)

// WithLenient looks for a missing tile at the same number in slots 0 to 3
// before giving up on it.
func WithLenient() RetailOption {
	return func(o *retailOptions) {
		o.lenient = true
	}
}

func lookup(all []*tile.Tile, i int) *tile.Tile {
	if i < 0 || i >= len(all) {
		return nil
	}
	return all[i]
}

// FromRetail builds an object from its retail description. all holds the
// tiles of every slot, indexed by slot*256 + tile number, with nil for
// tiles that are not loaded. Every tile is copied.
func FromRetail(r Retail, all []*tile.Tile, opts ...RetailOption) (*Object, []Warning, error) {
	o := &retailOptions{}
	for _, opt := range opts {
		opt(o)
	}

	steps, err := layout.Parse(r.Layout)
	if err != nil {
		return nil, nil, err
	}

	obj := &Object{
		Name:       r.Name,
		Width:      r.Width,
		Height:     r.Height,
		RandomizeX: r.RandomizeX,
		RandomizeY: r.RandomizeY,
		Role:       RoleUnknown,
		steps:      steps,
	}

	// One copy per source tile, shared by the steps of this object only
	copies := make(map[*tile.Tile]*tile.Tile)
	clone := func(t *tile.Tile) *tile.Tile {
		if t == nil || t == tile.Unavailable {
			return t
		}
		c, ok := copies[t]
		if !ok {
			c = t.Clone()
			copies[t] = c
		}
		return c
	}

	var warnings []Warning
	first := -1
	for _, t := range layout.Tiles(steps) {
		found := 0
		var picked *tile.Tile

		if !t.IsEmpty() {
			found = t.Index()
			picked = lookup(all, found)
			if picked == nil && o.lenient {
				for slot := 0; slot < Slots; slot++ {
					if p := lookup(all, slot*SlotTiles+int(t.TileNum)); p != nil {
						found, picked = slot*SlotTiles+int(t.TileNum), p
						break
					}
				}
			}
			if picked == nil {
				warnings = append(warnings, Warning{Object: r.Name, Index: t.Index()})
				picked = tile.Unavailable
			}
		}

		if first == -1 {
			first = found
		}
		obj.Tiles = append(obj.Tiles, clone(picked))
	}

	for i := first + 1; first >= 0 && i < first+r.Variants; i++ {
		t := lookup(all, i)
		if t == nil {
			t = tile.Unavailable
		}
		obj.Replacements = append(obj.Replacements, clone(t))
	}

	return obj, warnings, nil
}

// Retail returns the retail description of the object with every tile step
// rewritten by f, which is given the ordinal of the tile step and returns
// the slot and tile number to use.
func (o *Object) Retail(f func(int) (slot, num uint8)) Retail {
	steps := o.mapSteps(func(i int, t layout.Tile) layout.Tile {
		slot, num := f(i)
		return t.WithIndex(slot, num)
	})
	variants := 0
	if len(o.Replacements) > 0 {
		variants = len(o.Replacements) + 1
	}
	return Retail{
		Name:       o.Name,
		Layout:     layout.Encode(steps),
		Width:      o.Width,
		Height:     o.Height,
		RandomizeX: o.RandomizeX,
		RandomizeY: o.RandomizeY,
		Variants:   variants,
	}
}
