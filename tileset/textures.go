package tileset

import (
	"bytes"
	"errors"
	"image"
	"image/png"
)

// ErrUnsupportedVariant is returned for texture data that no configured
// TextureCodec can handle.
var ErrUnsupportedVariant = errors.New("tileset: unsupported texture variant")

var gtxMagic = []byte("Gfx2")

// TextureCodec converts between the texture resources stored in a tileset
// archive and images.
type TextureCodec interface {
	DecodeTexture([]byte) (image.Image, error)
	EncodeTexture(image.Image) ([]byte, error)
}

// PNGTextures stores textures as PNG images. Swizzled console textures are
// rejected with ErrUnsupportedVariant.
type PNGTextures struct{}

// DecodeTexture implements TextureCodec
func (PNGTextures) DecodeTexture(b []byte) (image.Image, error) {
	if bytes.HasPrefix(b, gtxMagic) {
		return nil, ErrUnsupportedVariant
	}
	return png.Decode(bytes.NewReader(b))
}

// EncodeTexture implements TextureCodec
func (PNGTextures) EncodeTexture(m image.Image) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := png.Encode(b, m); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
