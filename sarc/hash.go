package sarc

import "hash"

// DefaultHashMultiplier is the multiplier used by retail archives.
const DefaultHashMultiplier = 0x65

type digest struct {
	h          uint32
	multiplier uint32
}

// NewHash creates a new hash.Hash32 computing the SARC file name hash with
// the given multiplier. Its Sum method will lay the value out in big-endian
// byte order.
func NewHash(multiplier uint32) hash.Hash32 {
	return &digest{0, multiplier}
}

func (d *digest) Size() int { return 4 }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.h = 0 }

func update(h, multiplier uint32, p []byte) uint32 {
	for _, b := range p {
		h = h*multiplier + uint32(b)
	}
	return h
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.h = update(d.h, d.multiplier, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return d.h }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

// Hash returns the hash of name using multiplier.
func Hash(name string, multiplier uint32) uint32 {
	return update(0, multiplier, []byte(name))
}
