package tileset

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bodgit/onetileset/object"
)

// RecordSize is the size in bytes of an index record
const RecordSize = 6

const (
	flagRandomizeX = 1 << 4
	flagRandomizeY = 1 << 5
	variantsMask   = 0x0f
)

// Record is the index entry of one object.
type Record struct {
	Offset uint16
	Width  uint8
	Height uint8
	Flags  uint16
}

// NewRecord returns the record for an object whose layout starts at offset.
func NewRecord(offset int, r object.Retail) (Record, error) {
	if offset > 0xffff {
		return Record{}, fmt.Errorf("layout offset %#x out of range", offset)
	}
	if r.Width > 0xff || r.Height > 0xff {
		return Record{}, fmt.Errorf("object %dx%d too large", r.Width, r.Height)
	}
	if r.Variants > variantsMask {
		return Record{}, fmt.Errorf("%d random tiles, at most %d allowed", r.Variants, variantsMask)
	}
	rec := Record{
		Offset: uint16(offset),
		Width:  uint8(r.Width),
		Height: uint8(r.Height),
		Flags:  uint16(r.Variants),
	}
	if r.RandomizeX {
		rec.Flags |= flagRandomizeX
	}
	if r.RandomizeY {
		rec.Flags |= flagRandomizeY
	}
	return rec, nil
}

// RandomizeX reports whether the object is randomized horizontally
func (r Record) RandomizeX() bool { return r.Flags&flagRandomizeX != 0 }

// RandomizeY reports whether the object is randomized vertically
func (r Record) RandomizeY() bool { return r.Flags&flagRandomizeY != 0 }

// Variants returns the number of interchangeable tiles
func (r Record) Variants() int { return int(r.Flags & variantsMask) }

// IndexTable is the object index of a slot. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type IndexTable []Record

// MarshalBinary encodes the table into binary form and returns the result
func (t IndexTable) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	if err := binary.Write(b, binary.BigEndian, []Record(t)); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalBinary decodes the table from binary form. A trailing partial
// record is ignored.
func (t *IndexTable) UnmarshalBinary(b []byte) error {
	records := make([]Record, len(b)/RecordSize)
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, records); err != nil {
		return err
	}
	*t = records
	return nil
}

// Info maps object positions in the index to object names. It is stored as
// a JSON list of [index, name] pairs.
type Info map[int]string

// MarshalJSON implements json.Marshaler
func (i Info) MarshalJSON() ([]byte, error) {
	keys := make([]int, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	pairs := make([][2]interface{}, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]interface{}{k, i[k]})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Info) UnmarshalJSON(b []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(b, &pairs); err != nil {
		return err
	}
	info := make(Info, len(pairs))
	for _, pair := range pairs {
		var (
			k    int
			name string
		)
		if err := json.Unmarshal(pair[0], &k); err != nil {
			return err
		}
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return err
		}
		info[k] = name
	}
	*i = info
	return nil
}
