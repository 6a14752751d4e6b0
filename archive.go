package onetileset

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/onetileset/sarc"
)

var errUnsafePath = errors.New("unsafe path in archive")

// Extract writes every file in the archive file below dir.
func (o *OneTileset) Extract(file, dir string) error {
	a, err := o.ReadArchive(file)
	if err != nil {
		return err
	}

	for _, name := range a.Names() {
		clean := path.Clean("/" + name)[1:]
		if clean == "" || clean != strings.TrimPrefix(name, "/") {
			return fmt.Errorf("%w: %q", errUnsafePath, name)
		}

		target := filepath.Join(dir, filepath.FromSlash(clean))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		b, _ := a.Get(name)
		if err := ioutil.WriteFile(target, b, 0o644); err != nil {
			return err
		}
		o.logger.Printf("Extracted \"%s\"\n", name)
	}

	return nil
}

// Archive stores every file below dir in a new archive written to file.
// Names are relative to dir with forward slashes.
func (o *OneTileset) Archive(dir, file string, opts ...sarc.Option) error {
	a := sarc.New()
	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
		if p != dir && info.Name()[0] == '.' {
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		b, err := ioutil.ReadFile(p)
		if err != nil {
			return err
		}
		a.Set(filepath.ToSlash(rel), b)
		return nil
	}); err != nil {
		return err
	}

	o.logger.Printf("Archiving %d files to \"%s\"\n", a.Len(), file)
	return o.WriteArchive(file, a, opts...)
}
