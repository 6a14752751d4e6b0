package tileset

import (
	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/tile"
)

type options struct {
	lenient bool
	slot    int
}

// Option configures loading and packing
type Option func(*options)

// WithLenient looks for tiles missing from their own slot in the other
// slots before reporting them.
func WithLenient() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// WithSlot packs into the one given slot rather than slots 1 to 3.
func WithSlot(slot int) Option {
	return func(o *options) {
		o.slot = slot
	}
}

func newOptions(opts []Option) *options {
	o := &options{slot: -1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func objects(s *Slot, all []*tile.Tile, opts []object.RetailOption) ([]*object.Object, []object.Warning, error) {
	retail, err := s.Retail()
	if err != nil {
		return nil, nil, err
	}

	var (
		objs     []*object.Object
		warnings []object.Warning
	)
	for _, r := range retail {
		obj, w, err := object.FromRetail(r, all, opts...)
		if err != nil {
			return nil, nil, err
		}
		objs = append(objs, obj)
		warnings = append(warnings, w...)
	}
	return objs, warnings, nil
}

// LoadAll loads the objects of all four slots. Objects may use tiles from
// any slot so the slots must be loaded together. A nil slot has no tiles or
// objects.
func LoadAll(slots [object.Slots]*Slot, opts ...Option) ([object.Slots][]*object.Object, []object.Warning, error) {
	o := newOptions(opts)

	all := make([]*tile.Tile, object.Slots*object.SlotTiles)
	for i, s := range slots {
		if s != nil {
			copy(all[i*object.SlotTiles:(i+1)*object.SlotTiles], s.Tiles)
		}
	}

	var ropts []object.RetailOption
	if o.lenient {
		ropts = append(ropts, object.WithLenient())
	}

	var (
		result   [object.Slots][]*object.Object
		warnings []object.Warning
	)
	for i, s := range slots {
		if s == nil {
			continue
		}
		objs, w, err := objects(s, all, ropts)
		if err != nil {
			return result, nil, err
		}
		result[i] = objs
		warnings = append(warnings, w...)
	}
	return result, warnings, nil
}

// Load loads the objects of a single slot without knowing which slot it is
// meant to occupy. Its tiles are made available in every slot so only
// references to tiles of other tilesets are reported.
func Load(s *Slot) ([]*object.Object, []object.Warning, error) {
	all := make([]*tile.Tile, object.Slots*object.SlotTiles)
	for i := 0; i < object.Slots; i++ {
		copy(all[i*object.SlotTiles:(i+1)*object.SlotTiles], s.Tiles)
	}
	return objects(s, all, []object.RetailOption{object.WithLenient()})
}
