/*
Package onetileset is a library for converting tilesets between the retail
archives used by the game and a portable format that can be edited by hand.
*/
package onetileset

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/onetileset/codec"
	"github.com/bodgit/onetileset/sarc"
	"github.com/bodgit/onetileset/tileset"
)

// DefaultLevel is the default Yaz0 compression level
const DefaultLevel = 3

type OneTileset struct {
	catalog  *Catalog
	codec    codec.Codec
	textures tileset.TextureCodec
	logger   *log.Logger
}

// Option configures a OneTileset
type Option func(*OneTileset)

// WithCatalog records every exported object in c.
func WithCatalog(c *Catalog) Option {
	return func(o *OneTileset) {
		o.catalog = c
	}
}

// WithCodec compresses written archives with c. The default is Yaz0 at
// DefaultLevel.
func WithCodec(c codec.Codec) Option {
	return func(o *OneTileset) {
		o.codec = c
	}
}

// WithTextures sets the codec for tileset textures. The default is
// tileset.PNGTextures.
func WithTextures(t tileset.TextureCodec) Option {
	return func(o *OneTileset) {
		o.textures = t
	}
}

func New(logger *log.Logger, opts ...Option) *OneTileset {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	o := &OneTileset{
		codec:    codec.Yaz0{Level: DefaultLevel},
		textures: tileset.PNGTextures{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decompress returns the contents of file, decompressed with whichever codec
// it appears to use.
func (o *OneTileset) Decompress(file string) ([]byte, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	c := codec.Detect(b)
	o.logger.Printf("Reading \"%s\" as %s\n", file, c.Name())
	return c.Decompress(b)
}

// Compress writes b to file using the configured codec.
func (o *OneTileset) Compress(file string, b []byte) error {
	out, err := o.codec.Compress(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return ioutil.WriteFile(file, out, 0o644)
}

// ReadArchive loads a possibly compressed archive.
func (o *OneTileset) ReadArchive(file string) (*sarc.Archive, error) {
	b, err := o.Decompress(file)
	if err != nil {
		return nil, err
	}
	a, err := sarc.Load(b)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// WriteArchive saves and compresses a to file.
func (o *OneTileset) WriteArchive(file string, a *sarc.Archive, opts ...sarc.Option) error {
	b, err := sarc.Save(a, opts...)
	if err != nil {
		return err
	}
	return o.Compress(file, b)
}
