package onetileset

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/sarc"
	"github.com/bodgit/onetileset/tile"
	"github.com/bodgit/onetileset/tileset"
)

var errNoSlot = errors.New("cannot tell which slot the tileset is for")

// SlotNumber returns the slot an archive was saved for, taken from the
// name of its tile images.
func SlotNumber(a *sarc.Archive) (int, error) {
	for _, name := range a.Names() {
		if !strings.HasPrefix(name, "BG_tex/Pa") || len(name) < len("BG_tex/Pa0") {
			continue
		}
		n, err := strconv.Atoi(name[len("BG_tex/Pa") : len("BG_tex/Pa")+1])
		if err == nil && n < object.Slots {
			return n, nil
		}
	}
	return 0, errNoSlot
}

func (o *OneTileset) readSlot(file string) (*tileset.Slot, *sarc.Archive, error) {
	a, err := o.ReadArchive(file)
	if err != nil {
		return nil, nil, err
	}
	s, err := tileset.ReadSlot(a, o.textures)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	return s, a, nil
}

// LoadObjects loads the objects of one or more tileset archives. A single
// archive is loaded on its own, several are placed in the slots their names
// say they belong to so that objects can use tiles from each of them.
func (o *OneTileset) LoadObjects(files ...string) ([]*object.Object, error) {
	var (
		objs     []*object.Object
		warnings []object.Warning
	)

	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		s, _, err := o.readSlot(files[0])
		if err != nil {
			return nil, err
		}
		if objs, warnings, err = tileset.Load(s); err != nil {
			return nil, err
		}
	default:
		var slots [object.Slots]*tileset.Slot
		for _, file := range files {
			s, a, err := o.readSlot(file)
			if err != nil {
				return nil, err
			}
			n, err := SlotNumber(a)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if slots[n] != nil {
				return nil, fmt.Errorf("%s: slot %d given twice", file, n)
			}
			slots[n] = s
		}
		all, w, err := tileset.LoadAll(slots, tileset.WithLenient())
		if err != nil {
			return nil, err
		}
		for _, list := range all {
			objs = append(objs, list...)
		}
		warnings = w
	}

	for _, w := range warnings {
		o.logger.Println(w)
	}
	return objs, nil
}

// Export writes every object from the tileset archives to dir in the
// portable format. Unnamed objects are numbered.
func (o *OneTileset) Export(dir string, files ...string) error {
	objs, err := o.LoadObjects(files...)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, obj := range objs {
		if obj.Name == "" || seen[obj.Name] {
			obj.Name = fmt.Sprintf("object%03d", i)
		}
		seen[obj.Name] = true

		if err := o.WritePortable(dir, obj); err != nil {
			return err
		}
		o.logger.Printf("Exported \"%s\"\n", obj.Name)
	}

	if o.catalog != nil && len(files) > 0 {
		if err := o.catalog.Import(objs, filepath.Base(files[0])); err != nil {
			return err
		}
	}

	return nil
}

// Import packs every portable object below dir into tileset archives named
// after name and written to out. A negative slot packs into slots 1 to 3.
func (o *OneTileset) Import(dir, out, name string, slot int) ([]string, error) {
	found, _, err := o.LoadPortableDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)
	objs := make([]*object.Object, 0, len(names))
	for _, n := range names {
		objs = append(objs, found[n])
	}
	object.Sort(objs)

	var opts []tileset.Option
	if slot >= 0 {
		opts = append(opts, tileset.WithSlot(slot))
	}
	p, err := tileset.Pack(objs, name, opts...)
	if err != nil {
		return nil, err
	}
	archives, err := p.Save(o.textures)
	if err != nil {
		return nil, err
	}

	var written []string
	for i, b := range archives {
		file := filepath.Join(out, fmt.Sprintf("Pa%d_%s.szs", p.Slots[i], name))
		if err := o.Compress(file, b); err != nil {
			return nil, err
		}
		o.logger.Printf("Wrote \"%s\"\n", file)
		written = append(written, file)
	}
	return written, nil
}

// Render draws object index of the tileset archive file to a PNG image. The
// object is drawn at its own size unless width and height are given. A
// positive colors reduces the image to that many colours.
func (o *OneTileset) Render(file string, index, width, height, colors int, out string) error {
	objs, err := o.LoadObjects(file)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(objs) {
		return fmt.Errorf("%s: no object %d, %d objects", file, index, len(objs))
	}

	var m image.Image = tile.Compose(objs[index].Render(width, height))
	if colors > 0 {
		m = tile.Paletted(m, colors)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, m)
}
