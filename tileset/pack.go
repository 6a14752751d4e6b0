package tileset

import (
	"encoding/json"
	"fmt"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/sarc"
	"github.com/bodgit/onetileset/tile"
)

// Ref identifies a tile of an object by its position in the object's
// AllTiles.
type Ref struct {
	Object  int
	Ordinal int
}

// SizeLimitError is returned when the objects need more tiles than the
// target slots can hold.
type SizeLimitError struct {
	Tiles int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("tileset: %d tiles needed, at most %d fit", e.Tiles, e.Limit)
}

func ordinals(obj *object.Object) ([]*tile.Tile, map[*tile.Tile]int) {
	all := obj.AllTiles()
	m := make(map[*tile.Tile]int, len(all))
	for i, t := range all {
		m[t] = i
	}
	return all, m
}

func find(tiles []*tile.Tile, t *tile.Tile) int {
	for i, t2 := range tiles {
		if t2 != nil && tile.Equal(t2, t) {
			return i
		}
	}
	return -1
}

// MinimalTiles returns the distinct non-empty tiles used by objs along with
// the position in that list of every object tile, or -1 for an empty tile.
// The first tile of an object with replacement tiles is followed by its
// replacements, in order and never shared, as the game finds replacements
// by their position.
func MinimalTiles(objs []*object.Object) ([]*tile.Tile, map[Ref]int) {
	var tiles []*tile.Tile
	refs := make(map[Ref]int)

	for i, obj := range objs {
		all, ord := ordinals(obj)

		if len(obj.Replacements) > 0 && len(obj.Tiles) > 0 && !obj.Tiles[0].IsEmpty() {
			run := append([]*tile.Tile{obj.Tiles[0]}, obj.Replacements...)
			for _, t := range run {
				ref := Ref{i, ord[t]}
				if _, ok := refs[ref]; !ok {
					refs[ref] = len(tiles)
				}
				tiles = append(tiles, t)
			}
		}

		for j, t := range all {
			ref := Ref{i, j}
			if _, ok := refs[ref]; ok {
				continue
			}
			if t.IsEmpty() {
				refs[ref] = -1
				continue
			}
			k := find(tiles, t)
			if k < 0 {
				k = len(tiles)
				tiles = append(tiles, t)
			}
			refs[ref] = k
		}
	}

	return tiles, refs
}

// TileCount returns the number of tiles packing objs would use.
func TileCount(objs []*object.Object) int {
	tiles, _ := MinimalTiles(objs)
	return len(tiles)
}

// Packed is a list of objects packed into one or more retail slots.
type Packed struct {
	Name string
	// Slots holds the slot number of each sheet
	Slots  []int
	Sheets []*tile.Sheet
	// Layouts and Index describe every object and belong to the first slot
	Layouts []byte
	Index   IndexTable
	Names   Info
}

// Pack assigns the tiles of objs to slots 1 to 3, or to the single slot
// chosen with WithSlot, and rewrites every object layout to match. Nothing
// is produced if the tiles do not fit.
func Pack(objs []*object.Object, name string, opts ...Option) (*Packed, error) {
	o := newOptions(opts)

	base, limit := 1, MaxTiles
	if o.slot >= 0 {
		if o.slot >= object.Slots {
			return nil, fmt.Errorf("tileset: invalid slot %d", o.slot)
		}
		base, limit = o.slot, object.SlotTiles
	}

	// Tile 0 of slot 0 means no tile
	offset := 0
	if base == 0 {
		offset = 1
		limit--
	}

	tiles, refs := MinimalTiles(objs)
	if len(tiles) > limit {
		return nil, &SizeLimitError{Tiles: len(tiles), Limit: limit}
	}

	p := &Packed{
		Name:  name,
		Names: Info{},
	}

	for i, obj := range objs {
		_, ord := ordinals(obj)
		r := obj.Retail(func(n int) (uint8, uint8) {
			k := refs[Ref{i, ord[obj.Tiles[n]]}]
			if k < 0 {
				return 0, 0
			}
			k += offset
			return uint8(base + k/object.SlotTiles), uint8(k % object.SlotTiles)
		})

		rec, err := NewRecord(len(p.Layouts), r)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		p.Index = append(p.Index, rec)
		p.Layouts = append(p.Layouts, r.Layout...)
		p.Layouts = append(p.Layouts, layout.EndOfObject)

		if obj.Name != "" {
			p.Names[i] = obj.Name
		}
	}

	cells := tiles
	if offset > 0 {
		cells = append([]*tile.Tile{nil}, tiles...)
	}

	// At least one slot is always written
	for start := 0; start == 0 || start < len(cells); start += object.SlotTiles {
		end := start + object.SlotTiles
		if end > len(cells) {
			end = len(cells)
		}
		sheet := tile.NewRetailSheet()
		for j, t := range cells[start:end] {
			sheet.Put(j, t)
		}
		p.Slots = append(p.Slots, base+start/object.SlotTiles)
		p.Sheets = append(p.Sheets, sheet)
	}

	return p, nil
}

// Archives builds one tileset archive per slot. The first archive also holds
// every object.
func (p *Packed) Archives(codec TextureCodec) ([]*sarc.Archive, error) {
	if codec == nil {
		return nil, ErrUnsupportedVariant
	}

	index, err := p.Index.MarshalBinary()
	if err != nil {
		return nil, err
	}
	info, err := json.Marshal(p.Names)
	if err != nil {
		return nil, err
	}

	archives := make([]*sarc.Archive, 0, len(p.Sheets))
	for i, sheet := range p.Sheets {
		slot := p.Slots[i]

		img, err := codec.EncodeTexture(sheet.Image)
		if err != nil {
			return nil, fmt.Errorf("encode tile images: %w", err)
		}
		nml, err := codec.EncodeTexture(sheet.Normal)
		if err != nil {
			return nil, fmt.Errorf("encode normal map: %w", err)
		}

		a := sarc.New()
		a.Set(ImagePath(slot, p.Name), img)
		a.Set(NormalPath(slot, p.Name), nml)
		a.Set(CollisionsPath(slot, p.Name), append([]byte(nil), sheet.Collisions...))
		if i == 0 {
			a.Set(LayoutsPath(slot, p.Name), append([]byte(nil), p.Layouts...))
			a.Set(IndexPath(slot, p.Name), index)
			a.Set(InfoPath, info)
		} else {
			a.Set(LayoutsPath(slot, p.Name), []byte{})
			a.Set(IndexPath(slot, p.Name), []byte{})
		}
		archives = append(archives, a)
	}
	return archives, nil
}

// Save returns the serialized tileset archives, uncompressed. Payloads are
// aligned to ArchivePadding unless opts say otherwise.
func (p *Packed) Save(codec TextureCodec, opts ...sarc.Option) ([][]byte, error) {
	archives, err := p.Archives(codec)
	if err != nil {
		return nil, err
	}
	opts = append([]sarc.Option{sarc.WithPadding(ArchivePadding)}, opts...)

	out := make([][]byte, 0, len(archives))
	for _, a := range archives {
		b, err := sarc.Save(a, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
