package tileset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/sarc"
	"github.com/bodgit/onetileset/tile"
)

// Slot holds the resources of one retail tileset.
type Slot struct {
	// Tiles holds SlotTiles entries
	Tiles   []*tile.Tile
	Index   IndexTable
	Layouts []byte
	Names   Info
}

type resources struct {
	image, normal, collisions, index, layouts, info []byte
}

func findResources(a *sarc.Archive) (*resources, error) {
	r := new(resources)
	for _, name := range a.Names() {
		data, _ := a.Get(name)
		switch {
		case strings.HasPrefix(name, "BG_tex/Pa"):
			// Without the Pa prefix animation textures would match
			if strings.HasSuffix(name, "_nml.gtx") {
				r.normal = data
			} else if strings.HasSuffix(name, ".gtx") {
				r.image = data
			}
		case strings.HasPrefix(name, "BG_chk/d_bgchk_"):
			r.collisions = data
		case name == InfoPath:
			r.info = data
		case strings.HasPrefix(name, "BG_unt/"):
			if strings.HasSuffix(name, "_hd.bin") {
				r.index = data
			} else if strings.HasSuffix(name, ".bin") {
				r.layouts = data
			}
		}
	}

	for _, check := range []struct {
		data []byte
		what string
	}{
		{r.image, "tile images"},
		{r.normal, "normal map"},
		{r.collisions, "collisions"},
		{r.index, "object index"},
		{r.layouts, "object layouts"},
	} {
		if check.data == nil {
			return nil, fmt.Errorf("tileset: cannot find %s", check.what)
		}
	}
	return r, nil
}

// ReadSlot extracts the tiles, objects and object names of a retail tileset
// archive.
func ReadSlot(a *sarc.Archive, codec TextureCodec) (*Slot, error) {
	if codec == nil {
		return nil, ErrUnsupportedVariant
	}

	r, err := findResources(a)
	if err != nil {
		return nil, err
	}

	img, err := codec.DecodeTexture(r.image)
	if err != nil {
		return nil, fmt.Errorf("decode tile images: %w", err)
	}
	nml, err := codec.DecodeTexture(r.normal)
	if err != nil {
		return nil, fmt.Errorf("decode normal map: %w", err)
	}
	tiles, err := tile.Split(img, nml, r.collisions, true)
	if err != nil {
		return nil, err
	}
	if len(tiles) > object.SlotTiles {
		tiles = tiles[:object.SlotTiles]
	}

	s := &Slot{
		Tiles:   make([]*tile.Tile, object.SlotTiles),
		Layouts: r.layouts,
		Names:   Info{},
	}
	copy(s.Tiles, tiles)

	if err := s.Index.UnmarshalBinary(r.index); err != nil {
		return nil, err
	}
	if r.info != nil {
		if err := json.Unmarshal(r.info, &s.Names); err != nil {
			return nil, fmt.Errorf("decode object names: %w", err)
		}
	}

	return s, nil
}

var errBadOffset = errors.New("tileset: layout offset out of range")

// Retail returns the retail description of every object in the slot.
func (s *Slot) Retail() ([]object.Retail, error) {
	objs := make([]object.Retail, 0, len(s.Index))
	for i, rec := range s.Index {
		if int(rec.Offset) > len(s.Layouts) {
			return nil, fmt.Errorf("%w: object %d at %#x", errBadOffset, i, rec.Offset)
		}
		lyt, err := layout.Slice(s.Layouts[rec.Offset:])
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		objs = append(objs, object.Retail{
			Name:       s.Names[i],
			Layout:     lyt,
			Width:      int(rec.Width),
			Height:     int(rec.Height),
			RandomizeX: rec.RandomizeX(),
			RandomizeY: rec.RandomizeY(),
			Variants:   rec.Variants(),
		})
	}
	return objs, nil
}
