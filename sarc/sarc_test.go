package sarc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Archive {
	a := New()
	a.Set("a.txt", []byte("hello"))
	a.Set("b/c.txt", []byte("world"))
	return a
}

func TestHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), Hash("", DefaultHashMultiplier))
	assert.Equal(t, uint32(0x61), Hash("a", DefaultHashMultiplier))
	assert.Equal(t, uint32(0x61*0x65+0x62), Hash("ab", DefaultHashMultiplier))

	h := NewHash(DefaultHashMultiplier)
	_, err := h.Write([]byte("a"))
	require.NoError(t, err)
	_, err = h.Write([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, Hash("ab", DefaultHashMultiplier), h.Sum32())
	assert.Equal(t, []byte{0x00, 0x00, 0x26, 0xa7}, h.Sum(nil))

	h.Reset()
	assert.Equal(t, uint32(0), h.Sum32())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order binary.ByteOrder
	}{
		{"big endian", binary.BigEndian},
		{"little endian", binary.LittleEndian},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			b, err := Save(sample(), WithByteOrder(table.order))
			require.NoError(t, err)

			order, err := ByteOrder(b)
			require.NoError(t, err)
			assert.Equal(t, table.order, order)

			a, err := Load(b)
			require.NoError(t, err)
			assert.Equal(t, sample().Map(), a.Map())
		})
	}
}

func TestSaveLayout(t *testing.T) {
	t.Parallel()

	a := New()
	a.Set("a.txt", []byte("hello"))

	b, err := Save(a)
	require.NoError(t, err)

	assert.Equal(t, []byte("SARC"), b[0:4])
	assert.Equal(t, []byte{0x00, 0x14, 0xfe, 0xff}, b[4:8])
	assert.Equal(t, uint32(0x45), binary.BigEndian.Uint32(b[8:12]))
	assert.Equal(t, uint32(0x40), binary.BigEndian.Uint32(b[12:16]))
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, b[16:20])
	assert.Equal(t, []byte("SFAT"), b[0x14:0x18])
	assert.Equal(t, uint32(DefaultHashMultiplier), binary.BigEndian.Uint32(b[0x1c:0x20]))
	assert.Equal(t, Hash("a.txt", DefaultHashMultiplier), binary.BigEndian.Uint32(b[0x20:0x24]))
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, b[0x24:0x28])
	assert.Equal(t, []byte("SFNT"), b[0x30:0x34])
	assert.Equal(t, []byte("a.txt\x00\x00\x00"), b[0x38:0x40])
	assert.Equal(t, []byte("hello"), b[0x40:])

	le, err := Save(a, WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x14, 0x00, 0xff, 0xfe}, le[4:8])
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, le[16:20])
	// The hash stays big endian, the flagged name offset does not
	assert.Equal(t, b[0x20:0x24], le[0x20:0x24])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, le[0x24:0x28])
}

func TestSaveNameTablePadding(t *testing.T) {
	t.Parallel()

	// A name whose length is already a multiple of four still gets a
	// full word of NULs
	a := New()
	a.Set("abcd", []byte{1})

	b, err := Save(a)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd\x00\x00\x00\x00"), b[0x38:0x40])
}

func TestSavePadding(t *testing.T) {
	t.Parallel()

	a := New()
	for i := 0; i < 5; i++ {
		a.Set(fmt.Sprintf("file%d.bin", i), make([]byte, 3+i*7))
	}

	for _, padding := range []int{1, 4, 0x80, 0x2000} {
		b, err := Save(a, WithPadding(padding))
		require.NoError(t, err)

		dataStart := int(binary.BigEndian.Uint32(b[12:16]))
		assert.True(t, dataStart >= padding)
		for i := 0; i < a.Len(); i++ {
			node := b[0x20+i*0x10 : 0x30+i*0x10]
			start := int(binary.BigEndian.Uint32(node[8:12]))
			assert.Zero(t, (dataStart+start)%padding, "padding %#x entry %d", padding, i)
		}

		got, err := Load(b)
		require.NoError(t, err)
		assert.Equal(t, a.Map(), got.Map())
	}
}

func TestSaveMinDataStart(t *testing.T) {
	t.Parallel()

	b, err := Save(sample(), WithMinDataStart(0x2000))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2000), binary.BigEndian.Uint32(b[12:16]))

	a, err := Load(b)
	require.NoError(t, err)
	assert.Equal(t, sample().Map(), a.Map())
}

func TestSaveSorted(t *testing.T) {
	t.Parallel()

	a := New()
	for _, name := range []string{"zebra", "apple", "mango", "kiwi", "b", "a"} {
		a.Set(name, []byte(name))
	}

	b, err := Save(a)
	require.NoError(t, err)

	loaded, err := Load(b)
	require.NoError(t, err)

	names := loaded.Names()
	require.Len(t, names, 6)
	for i := 1; i < len(names); i++ {
		assert.True(t, Hash(names[i-1], DefaultHashMultiplier) <= Hash(names[i], DefaultHashMultiplier))
	}
}

func TestSaveHashMultiplier(t *testing.T) {
	t.Parallel()

	b, err := Save(sample(), WithHashMultiplier(0x1f))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1f), binary.BigEndian.Uint32(b[0x1c:0x20]))

	a, err := Load(b)
	require.NoError(t, err)
	assert.Equal(t, sample().Map(), a.Map())
}

func TestSaveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    *Archive
		opts []Option
		err  error
	}{
		{"zero padding", sample(), []Option{WithPadding(0)}, ErrBadPadding},
		{"embedded NUL", withFile(sample(), "Pa1_a\x00b.bin"), nil, ErrBadName},
		{"trailing NUL", withFile(New(), "Pa1_a.bin\x00"), nil, ErrBadName},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			b, err := Save(table.a, table.opts...)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, table.err))
		})
	}
}

func withFile(a *Archive, name string) *Archive {
	a.Set(name, []byte{1, 2, 3})
	return a
}

func TestEmptyArchive(t *testing.T) {
	t.Parallel()

	b, err := New().MarshalBinary()
	require.NoError(t, err)

	a := New()
	require.NoError(t, a.UnmarshalBinary(b))
	assert.Equal(t, 0, a.Len())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	good, err := Save(sample())
	require.NoError(t, err)

	corrupt := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return f(b)
	}

	tests := []struct {
		name  string
		data  []byte
		err   error
		field string
	}{
		{"short", good[:10], ErrTruncated, "header"},
		{"magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), ErrBadMagic, "SARC magic"},
		{"bom", corrupt(func(b []byte) []byte { b[6] = 0; return b }), ErrBadByteOrder, "byte order mark"},
		{"header length", corrupt(func(b []byte) []byte { b[5] = 0x10; return b }), ErrBadHeaderLength, "SARC header length"},
		{"file length", corrupt(func(b []byte) []byte { return append(b, 0) }), ErrLengthMismatch, "file length"},
		{"sfat magic", corrupt(func(b []byte) []byte { b[0x14] = 'X'; return b }), ErrBadMagic, "SFAT magic"},
		{"sfat length", corrupt(func(b []byte) []byte { b[0x19] = 0x10; return b }), ErrBadHeaderLength, "SFAT header length"},
		{"sfnt magic", corrupt(func(b []byte) []byte { b[0x40] = 'X'; return b }), ErrBadMagic, "SFNT magic"},
		{"data range", corrupt(func(b []byte) []byte { b[0x2c] = 0xff; return b }), ErrTruncated, "data range"},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(table.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, table.err), err.Error())
			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, table.field, fe.Field)
		})
	}
}

func TestArchive(t *testing.T) {
	t.Parallel()

	a := sample()
	assert.Equal(t, []string{"a.txt", "b/c.txt"}, a.Names())

	a.Set("a.txt", []byte("again"))
	assert.Equal(t, 2, a.Len())
	b, ok := a.Get("a.txt")
	assert.True(t, ok)
	assert.Equal(t, []byte("again"), b)

	a.Delete("a.txt")
	_, ok = a.Get("a.txt")
	assert.False(t, ok)
	assert.Equal(t, []string{"b/c.txt"}, a.Names())
}
