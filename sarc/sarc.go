/*
Package sarc implements the SARC archive container, a flat mapping of file
names to byte payloads used throughout Nintendo Wii U titles.

An archive has three sections followed by the file data:

	SARC  main header: header length 0x14, byte order mark, file length,
	      data start offset, reserved
	SFAT  header length 0x0C, entry count, hash multiplier, then one 16 byte
	      node per file: name hash, flagged name offset, data start, data end
	SFNT  header length 0x08, then NUL terminated names aligned to 4 bytes

The byte order mark selects big or little endian for every multi-byte field.
*/
package sarc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

const (
	headerLength = 0x14
	sfatLength   = 0x0c
	sfntLength   = 0x08
	nodeLength   = 0x10
	nameFlag     = 0x01000000
	maxEntries   = 0xffff
)

var (
	sarcMagic = []byte("SARC")
	sfatMagic = []byte("SFAT")
	sfntMagic = []byte("SFNT")
)

// Archive is an ordered mapping of file names to payloads. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Archive struct {
	names []string
	files map[string][]byte
}

// New returns an empty archive
func New() *Archive {
	return &Archive{
		files: make(map[string][]byte),
	}
}

// Len returns the number of files in the archive
func (a *Archive) Len() int {
	return len(a.names)
}

// Names returns the file names in insertion order
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

// Get returns the payload stored under name
func (a *Archive) Get(name string) ([]byte, bool) {
	b, ok := a.files[name]
	return b, ok
}

// Set stores data under name, replacing any existing payload
func (a *Archive) Set(name string, data []byte) {
	if a.files == nil {
		a.files = make(map[string][]byte)
	}
	if _, ok := a.files[name]; !ok {
		a.names = append(a.names, name)
	}
	a.files[name] = data
}

// Delete removes name from the archive
func (a *Archive) Delete(name string) {
	if _, ok := a.files[name]; !ok {
		return
	}
	delete(a.files, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
}

// Map returns a copy of the name to payload mapping
func (a *Archive) Map() map[string][]byte {
	m := make(map[string][]byte, len(a.files))
	for k, v := range a.files {
		m[k] = v
	}
	return m
}

// MarshalBinary encodes the archive using the default options
func (a *Archive) MarshalBinary() ([]byte, error) {
	return Save(a)
}

// UnmarshalBinary replaces the contents of the archive with those decoded
// from b
func (a *Archive) UnmarshalBinary(b []byte) error {
	n, err := Load(b)
	if err != nil {
		return err
	}
	*a = *n
	return nil
}

func formatError(field string, offset int, err error) error {
	return &FormatError{Field: field, Offset: offset, Err: err}
}

func need(data []byte, field string, offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(data) {
		return formatError(field, offset, ErrTruncated)
	}
	return nil
}

// ByteOrder returns the byte order declared by the archive in data.
func ByteOrder(data []byte) (binary.ByteOrder, error) {
	if err := need(data, "byte order mark", 6, 2); err != nil {
		return nil, err
	}
	switch {
	case data[6] == 0xfe && data[7] == 0xff:
		return binary.BigEndian, nil
	case data[6] == 0xff && data[7] == 0xfe:
		return binary.LittleEndian, nil
	default:
		return nil, formatError("byte order mark", 6, ErrBadByteOrder)
	}
}

// Load decodes the archive in data. Payloads are copied so the result does
// not alias data.
func Load(data []byte) (*Archive, error) {
	if err := need(data, "header", 0, headerLength); err != nil {
		return nil, err
	}
	if !bytes.Equal(data[0:4], sarcMagic) {
		return nil, formatError("SARC magic", 0, ErrBadMagic)
	}
	order, err := ByteOrder(data)
	if err != nil {
		return nil, err
	}
	if order.Uint16(data[4:6]) != headerLength {
		return nil, formatError("SARC header length", 4, ErrBadHeaderLength)
	}
	if int64(order.Uint32(data[8:12])) != int64(len(data)) {
		return nil, formatError("file length", 8, ErrLengthMismatch)
	}
	dataStart := int(order.Uint32(data[12:16]))
	if dataStart > len(data) {
		return nil, formatError("data start", 12, ErrTruncated)
	}

	sfat := headerLength
	if err := need(data, "SFAT header", sfat, sfatLength); err != nil {
		return nil, err
	}
	if !bytes.Equal(data[sfat:sfat+4], sfatMagic) {
		return nil, formatError("SFAT magic", sfat, ErrBadMagic)
	}
	if order.Uint16(data[sfat+4:sfat+6]) != sfatLength {
		return nil, formatError("SFAT header length", sfat+4, ErrBadHeaderLength)
	}
	count := int(order.Uint16(data[sfat+6 : sfat+8]))

	nodes := sfat + sfatLength
	if err := need(data, "SFAT nodes", nodes, count*nodeLength); err != nil {
		return nil, err
	}

	sfnt := nodes + count*nodeLength
	if err := need(data, "SFNT header", sfnt, sfntLength); err != nil {
		return nil, err
	}
	if !bytes.Equal(data[sfnt:sfnt+4], sfntMagic) {
		return nil, formatError("SFNT magic", sfnt, ErrBadMagic)
	}
	if order.Uint16(data[sfnt+4:sfnt+6]) != sfntLength {
		return nil, formatError("SFNT header length", sfnt+4, ErrBadHeaderLength)
	}
	names := sfnt + sfntLength

	a := New()
	for i := 0; i < count; i++ {
		node := data[nodes+i*nodeLength : nodes+(i+1)*nodeLength]
		off := nodes + i*nodeLength

		// The flag sits in the top byte of the word whichever the order
		nameOffset := int(order.Uint32(node[4:8])&0xffffff) * 4
		start := int64(order.Uint32(node[8:12]))
		end := int64(order.Uint32(node[12:16]))

		p := names + nameOffset
		if p >= len(data) {
			return nil, formatError("name offset", off+4, ErrTruncated)
		}
		n := bytes.IndexByte(data[p:], 0)
		if n < 0 {
			return nil, formatError("name", p, ErrTruncated)
		}
		name := string(data[p : p+n])

		if start > end || int64(dataStart)+end > int64(len(data)) {
			return nil, formatError("data range", off+8, ErrTruncated)
		}
		if _, ok := a.files[name]; ok {
			return nil, formatError("name", p, fmt.Errorf("%w: %q", ErrDuplicateName, name))
		}

		payload := make([]byte, end-start)
		copy(payload, data[int64(dataStart)+start:int64(dataStart)+end])
		a.Set(name, payload)
	}

	return a, nil
}

type options struct {
	padding      int
	order        binary.ByteOrder
	minDataStart int
	minSet       bool
	multiplier   uint32
}

// Option configures Save
type Option func(*options)

// WithPadding aligns the absolute offset of every payload to a multiple of
// padding. The default is 4.
func WithPadding(padding int) Option {
	return func(o *options) {
		o.padding = padding
	}
}

// WithByteOrder sets the byte order. The default is big endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithMinDataStart sets the lowest offset the file data may start at. The
// default is the padding.
func WithMinDataStart(offset int) Option {
	return func(o *options) {
		o.minDataStart = offset
		o.minSet = true
	}
}

// WithHashMultiplier sets the multiplier used for the name hash. The default
// is DefaultHashMultiplier.
func WithHashMultiplier(multiplier uint32) Option {
	return func(o *options) {
		o.multiplier = multiplier
	}
}

type entry struct {
	name string
	hash [4]byte
	key  uint32
}

// Save encodes a as a SARC archive. Entries are written in ascending order
// of their name hash.
func Save(a *Archive, opts ...Option) ([]byte, error) {
	o := &options{
		padding:    4,
		order:      binary.BigEndian,
		multiplier: DefaultHashMultiplier,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.padding < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadPadding, o.padding)
	}
	if !o.minSet {
		o.minDataStart = o.padding
	}
	if a.Len() > maxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrTooLarge, a.Len())
	}

	// The hash is always stored big endian but sorted as read back in the
	// archive's own byte order
	entries := make([]entry, 0, a.Len())
	for _, name := range a.names {
		// Names are stored NUL terminated
		if strings.IndexByte(name, 0) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadName, name)
		}
		e := entry{name: name}
		binary.BigEndian.PutUint32(e.hash[:], Hash(name, o.multiplier))
		e.key = o.order.Uint32(e.hash[:])
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	nameTable := new(bytes.Buffer)
	nameOffsets := make([]int, len(entries))
	for i, e := range entries {
		nameOffsets[i] = nameTable.Len()
		nameTable.WriteString(e.name)
		nameTable.Write(make([]byte, 4-len(e.name)%4))
	}
	if nameTable.Len()/4 > 0xffffff {
		return nil, fmt.Errorf("%w: name table is %d bytes", ErrTooLarge, nameTable.Len())
	}

	dataStart := headerLength + sfatLength + len(entries)*nodeLength + sfntLength + nameTable.Len()
	if o.minDataStart > dataStart {
		dataStart = o.minDataStart
	}

	dataTable := new(bytes.Buffer)
	ranges := make([][2]int, len(entries))
	for i, e := range entries {
		if r := (dataStart + dataTable.Len()) % o.padding; r != 0 {
			dataTable.Write(make([]byte, o.padding-r))
		}
		start := dataTable.Len()
		dataTable.Write(a.files[e.name])
		ranges[i] = [2]int{start, dataTable.Len()}
	}

	total := int64(dataStart) + int64(dataTable.Len())
	if total > 0xffffffff {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}

	b := new(bytes.Buffer)
	b.Grow(int(total))

	// SARC
	b.Write(sarcMagic)
	for _, v := range []interface{}{uint16(headerLength), uint16(0xfeff), uint32(total), uint32(dataStart)} {
		if err := binary.Write(b, o.order, v); err != nil {
			return nil, err
		}
	}
	if o.order == binary.LittleEndian {
		b.Write([]byte{0x00, 0x01, 0x00, 0x00})
	} else {
		b.Write([]byte{0x01, 0x00, 0x00, 0x00})
	}

	// SFAT
	b.Write(sfatMagic)
	for _, v := range []interface{}{uint16(sfatLength), uint16(len(entries)), o.multiplier} {
		if err := binary.Write(b, o.order, v); err != nil {
			return nil, err
		}
	}
	for i, e := range entries {
		b.Write(e.hash[:])
		node := []uint32{uint32(nameOffsets[i]/4) | nameFlag, uint32(ranges[i][0]), uint32(ranges[i][1])}
		if err := binary.Write(b, o.order, node); err != nil {
			return nil, err
		}
	}

	// SFNT
	b.Write(sfntMagic)
	if err := binary.Write(b, o.order, []uint16{sfntLength, 0}); err != nil {
		return nil, err
	}
	b.Write(nameTable.Bytes())

	b.Write(make([]byte, dataStart-b.Len()))
	b.Write(dataTable.Bytes())

	return b.Bytes(), nil
}
