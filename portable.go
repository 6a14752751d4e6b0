package onetileset

import (
	"fmt"
	"image"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/tile"
)

// Folder is one directory of portable objects.
type Folder struct {
	Folders map[string]*Folder
	// Objects holds the names of the objects in this directory
	Objects []string
}

func decodePNG(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return m, nil
}

func exists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}

func (o *OneTileset) loadSheet(base string) ([]*tile.Tile, error) {
	colls, err := ioutil.ReadFile(base + ".colls")
	if err != nil {
		return nil, err
	}
	img, err := decodePNG(base + ".png")
	if err != nil {
		return nil, err
	}
	var nml image.Image
	if exists(base + "_nml.png") {
		if nml, err = decodePNG(base + "_nml.png"); err != nil {
			return nil, err
		}
	}
	return tile.Split(img, nml, colls, false)
}

func (o *OneTileset) scanFolder(dir string, folder *Folder, objs map[string]*object.Object) error {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return err
	}

	var sheets, definitions []string
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		switch {
		case entry.IsDir():
			// Folders starting with an underscore are ignored
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
				continue
			}
			sub := &Folder{Folders: make(map[string]*Folder)}
			if err := o.scanFolder(full, sub, objs); err != nil {
				return err
			}
			folder.Folders[name] = sub
		case strings.HasSuffix(name, ".json") && exists(strings.TrimSuffix(full, ".json")+".objlyt"):
			definitions = append(definitions, strings.TrimSuffix(name, ".json"))
		case strings.HasSuffix(name, ".colls") && exists(strings.TrimSuffix(full, ".colls")+".png"):
			sheets = append(sheets, strings.TrimSuffix(name, ".colls"))
		}
	}

	tiles := make(map[string][]*tile.Tile, len(sheets))
	for _, name := range sheets {
		t, err := o.loadSheet(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		tiles[name] = t
	}

	sort.Strings(definitions)
	for _, def := range definitions {
		// Definitions are named sheet.object
		parts := strings.Split(def, ".")
		if len(parts) != 2 {
			continue
		}
		sheet, ok := tiles[parts[0]]
		if !ok {
			continue
		}
		name := parts[1]

		base := filepath.Join(dir, def)
		metadata, err := ioutil.ReadFile(base + ".json")
		if err != nil {
			return err
		}
		lyt, err := ioutil.ReadFile(base + ".objlyt")
		if err != nil {
			return err
		}

		obj, warnings, err := object.FromPortable(name, lyt, metadata, sheet)
		if err != nil {
			o.logger.Printf("Could not load \"%s\" from \"%s\": %s\n", name, dir, err)
			continue
		}
		for _, w := range warnings {
			o.logger.Println(w)
		}
		if _, ok := objs[name]; ok {
			o.logger.Printf("Object \"%s\" in \"%s\" replaces an earlier one\n", name, dir)
		}
		objs[name] = obj
		folder.Objects = append(folder.Objects, name)
	}

	return nil
}

// LoadPortableDir loads every portable object below dir, keyed by object
// name, along with the directory structure they were found in.
func (o *OneTileset) LoadPortableDir(dir string) (map[string]*object.Object, *Folder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: not a directory", dir)
	}

	objs := make(map[string]*object.Object)
	root := &Folder{Folders: make(map[string]*Folder)}
	if err := o.scanFolder(dir, root, objs); err != nil {
		return nil, nil, err
	}
	return objs, root, nil
}

var unsafeName = strings.NewReplacer(".", "_", "/", "_", "\\", "_")

// WritePortable writes obj in the portable format to dir.
func (o *OneTileset) WritePortable(dir string, obj *object.Object) error {
	p, err := obj.Portable()
	if err != nil {
		return fmt.Errorf("%s: %w", obj.Name, err)
	}
	p.Name = unsafeName.Replace(p.Name)

	files, err := p.Files()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, b := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}
