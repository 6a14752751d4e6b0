/*
Package yaz0 implements the Yaz0 compression format used by Nintendo for
archives and other game resources.

A Yaz0 stream starts with a 16 byte header: the magic "Yaz0", the
decompressed size as a big-endian uint32 and eight reserved bytes. The body
is a sequence of groups, each introduced by a control byte whose bits are
read most significant first. A set bit copies one literal byte, a clear bit
introduces a two or three byte back-reference into the output produced so
far:

	NR RR           copy N+2 bytes (N in 1..15)
	0R RR NN        copy NN+0x12 bytes

The distance back from the current position is RRR+1.
*/
package yaz0

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
)

const (
	headerSize  = 16
	maxDistance = 0x1000
	minRun      = 3
	maxRun      = 0xff + 0x12

	// MaxLevel is the highest supported compression level
	MaxLevel = 9
)

// Magic is the four byte signature at the start of every Yaz0 stream.
var Magic = [4]byte{'Y', 'a', 'z', '0'}

// IsCompressed reports whether data looks like a Yaz0 stream.
func IsCompressed(data []byte) bool {
	if len(data) < headerSize || !bytes.Equal(data[:4], Magic[:]) {
		return false
	}
	for _, b := range data[8:16] {
		if b != 0 {
			return false
		}
	}
	return true
}

// DecompressedSize returns the size declared in the Yaz0 header.
func DecompressedSize(data []byte) (int, error) {
	if len(data) < headerSize {
		return 0, &FormatError{Field: "header", Offset: len(data), Err: ErrTruncated}
	}
	if !bytes.Equal(data[:4], Magic[:]) {
		return 0, &FormatError{Field: "magic", Offset: 0, Err: ErrBadMagic}
	}
	return int(binary.BigEndian.Uint32(data[4:8])), nil
}

// Decompress returns the decompressed contents of the Yaz0 stream in src.
// Decoding stops as soon as the declared size has been produced, even in the
// middle of a group.
func Decompress(src []byte) ([]byte, error) {
	size, err := DecompressedSize(src)
	if err != nil {
		return nil, err
	}

	// The header is untrusted, so only reserve what the body could expand to
	dst := make([]byte, 0, maxExpansion(len(src)-headerSize, size))
	s, d := headerSize, 0

	for d < size {
		if s >= len(src) {
			return nil, &FormatError{Field: "control byte", Offset: s, Err: ErrTruncated}
		}
		code := src[s]
		s++

		for bit := 0; bit < 8 && d < size; bit++ {
			if code&(0x80>>uint(bit)) != 0 {
				if s >= len(src) {
					return nil, &FormatError{Field: "literal", Offset: s, Err: ErrTruncated}
				}
				dst = append(dst, src[s])
				d++
				s++
				continue
			}

			if s+2 > len(src) {
				return nil, &FormatError{Field: "back-reference", Offset: s, Err: ErrTruncated}
			}
			start := s
			b1, b2 := src[s], src[s+1]
			s += 2

			n := int(b1 >> 4)
			if n == 0 {
				if s >= len(src) {
					return nil, &FormatError{Field: "run length", Offset: s, Err: ErrTruncated}
				}
				n = int(src[s]) + 0x12
				s++
			} else {
				n += 2
			}

			from := d - (int(b1&0x0f)<<8 | int(b2)) - 1
			if from < 0 {
				return nil, &FormatError{Field: "back-reference", Offset: start, Err: ErrBadDistance}
			}

			// Byte at a time, the source may overlap what is being written
			for i := 0; i < n && d < size; i++ {
				dst = append(dst, dst[from+i])
				d++
			}
		}
	}

	return dst, nil
}

// maxExpansion caps size at the most that n body bytes can decode to. A three
// byte back-reference is the densest token at maxRun bytes of output.
func maxExpansion(n, size int) int {
	if limit := n/3*maxRun + n%3*(0xf+2); size > limit {
		return limit
	}
	return size
}

// NewReader reads the whole Yaz0 stream from r and returns a reader over the
// decompressed contents.
func NewReader(r io.Reader) (io.Reader, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := Decompress(b)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}
