/*
Package codec provides the compression schemes an archive can be stored
with. Retail archives use Yaz0; the others are for portable bundles.
*/
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/DataDog/zstd"
	"github.com/bodgit/onetileset/yaz0"
	"github.com/pierrec/lz4/v4"
)

// ErrUnknownCodec is returned by Lookup for an unrecognised name
var ErrUnknownCodec = errors.New("codec: unknown codec")

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Codec compresses and decompresses whole buffers.
type Codec interface {
	Name() string
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// Yaz0 is the compression used by retail archives. Level runs from 0,
// which stores everything as literals, to yaz0.MaxLevel.
type Yaz0 struct {
	Level int
}

// Name implements Codec
func (Yaz0) Name() string { return "yaz0" }

// Compress implements Codec
func (c Yaz0) Compress(b []byte) ([]byte, error) { return yaz0.Compress(b, c.Level) }

// Decompress implements Codec
func (Yaz0) Decompress(b []byte) ([]byte, error) { return yaz0.Decompress(b) }

// Zstd compresses with Zstandard. A level of 0 uses the library default.
type Zstd struct {
	Level int
}

// Name implements Codec
func (Zstd) Name() string { return "zstd" }

// Compress implements Codec
func (c Zstd) Compress(b []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = zstd.DefaultCompression
	}
	out, err := zstd.CompressLevel(nil, b, level)
	if err != nil {
		return nil, fmt.Errorf("zstd compress: %w", err)
	}
	return out, nil
}

// Decompress implements Codec
func (Zstd) Decompress(b []byte) ([]byte, error) {
	out, err := zstd.Decompress(nil, b)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// LZ4 compresses with LZ4 frames. Level 0 is the fast compressor, 1 to 9
// use the high compression one.
type LZ4 struct {
	Level int
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// Name implements Codec
func (LZ4) Name() string { return "lz4" }

// Compress implements Codec
func (c LZ4) Compress(b []byte) ([]byte, error) {
	if c.Level < 0 || c.Level >= len(lz4Levels) {
		return nil, fmt.Errorf("lz4 compress: invalid level %d", c.Level)
	}

	out := new(bytes.Buffer)
	w := lz4.NewWriter(out)
	if err := w.Apply(lz4.CompressionLevelOption(lz4Levels[c.Level])); err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return out.Bytes(), nil
}

// Decompress implements Codec
func (LZ4) Decompress(b []byte) ([]byte, error) {
	out, err := ioutil.ReadAll(lz4.NewReader(bytes.NewReader(b)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}

// None stores data as is.
type None struct{}

// Name implements Codec
func (None) Name() string { return "none" }

// Compress implements Codec
func (None) Compress(b []byte) ([]byte, error) { return append([]byte(nil), b...), nil }

// Decompress implements Codec
func (None) Decompress(b []byte) ([]byte, error) { return append([]byte(nil), b...), nil }

var codecs = map[string]func(int) Codec{
	"yaz0": func(level int) Codec { return Yaz0{Level: level} },
	"zstd": func(level int) Codec { return Zstd{Level: level} },
	"lz4":  func(level int) Codec { return LZ4{Level: level} },
	"none": func(int) Codec { return None{} },
}

// Names returns the names Lookup accepts, sorted
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the codec called name, compressing at level.
func Lookup(name string, level int) (Codec, error) {
	f, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return f(level), nil
}

// Detect returns the codec that data appears to be compressed with, None
// if it does not look compressed.
func Detect(data []byte) Codec {
	switch {
	case yaz0.IsCompressed(data):
		return Yaz0{}
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd{}
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4{}
	default:
		return None{}
	}
}
