package yaz0

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(size uint32) []byte {
	return []byte{'Y', 'a', 'z', '0', byte(size >> 24), byte(size >> 16), byte(size >> 8), byte(size), 0, 0, 0, 0, 0, 0, 0, 0}
}

func TestDecompress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body []byte
		size uint32
		want []byte
	}{
		{
			name: "empty",
			size: 0,
			want: []byte{},
		},
		{
			name: "literals",
			body: []byte{0xe0, 'a', 'b', 'c'},
			size: 3,
			want: []byte("abc"),
		},
		{
			// literal 'a' then copy 5 bytes from distance 1
			name: "overlapping run",
			body: []byte{0x80, 'a', 0x30, 0x00},
			size: 6,
			want: []byte("aaaaaa"),
		},
		{
			// literals "ab" then a three byte token copying 0x12+2 bytes from distance 2
			name: "long run",
			body: []byte{0xc0, 'a', 'b', 0x00, 0x01, 0x02},
			size: 22,
			want: bytes.Repeat([]byte("ab"), 11),
		},
		{
			// stops once the declared size is reached
			name: "mid group",
			body: []byte{0xff, 'x', 'y', 'z', 'w'},
			size: 2,
			want: []byte("xy"),
		},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decompress(append(header(table.size), table.body...))
			require.NoError(t, err)
			assert.Equal(t, table.want, got)
		})
	}
}

func TestDecompressErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  []byte
		err   error
		field string
	}{
		{"short header", []byte("Yaz0"), ErrTruncated, "header"},
		{"bad magic", append([]byte("Yaz1"), make([]byte, 12)...), ErrBadMagic, "magic"},
		{"missing control", header(4), ErrTruncated, "control byte"},
		{"missing literal", append(header(2), 0xff, 'a'), ErrTruncated, "literal"},
		{"missing token", append(header(4), 0x80, 'a', 0x30), ErrTruncated, "back-reference"},
		{"missing run length", append(header(40), 0x80, 'a', 0x00, 0x00), ErrTruncated, "run length"},
		{"bad distance", append(header(4), 0x00, 0x30, 0x05), ErrBadDistance, "back-reference"},
		{"oversized empty body", header(0xffffffff), ErrTruncated, "control byte"},
		{"oversized short body", append(header(0xffffffff), 0xff, 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'), ErrTruncated, "control byte"},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decompress(table.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, table.err))
			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, table.field, fe.Field)
		})
	}
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	random := make([]byte, 3000)
	r.Read(random)

	inputs := map[string][]byte{
		"empty":      {},
		"single":     {0x42},
		"text":       []byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		"run":        bytes.Repeat([]byte{0}, 5000),
		"pattern":    bytes.Repeat([]byte("SARC"), 700),
		"random":     random,
		"mixed tail": append(bytes.Repeat([]byte("abcabc"), 100), 1, 2, 3, 4, 5, 6, 7),
	}

	for name, data := range inputs {
		for level := 0; level <= MaxLevel; level++ {
			out, err := Compress(data, level)
			require.NoError(t, err)
			assert.Zero(t, len(out)%16, "%s level %d", name, level)
			assert.True(t, IsCompressed(out))

			size, err := DecompressedSize(out)
			require.NoError(t, err)
			assert.Equal(t, len(data), size)

			got, err := Decompress(out)
			require.NoError(t, err, "%s level %d", name, level)
			assert.Equal(t, data, got, "%s level %d", name, level)
		}
	}
}

func TestCompressEmpty(t *testing.T) {
	t.Parallel()

	out, err := Compress(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, header(0), out)

	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompressDeterministic(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("deterministic output "), 50)
	a, err := Compress(data, 6)
	require.NoError(t, err)
	b, err := Compress(data, 6)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompressShrinks(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("tileset"), 500)
	stored, err := Compress(data, 0)
	require.NoError(t, err)
	packed, err := Compress(data, 9)
	require.NoError(t, err)
	assert.True(t, len(packed) < len(stored))
}

func TestCompressBadLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []int{-1, 10} {
		_, err := Compress([]byte("x"), level)
		assert.True(t, errors.Is(err, ErrBadLevel))
	}
}

func TestNewReader(t *testing.T) {
	t.Parallel()

	data := []byte("reader contents reader contents")
	out, err := Compress(data, 3)
	require.NoError(t, err)

	r, err := NewReader(bytes.NewReader(out))
	require.NoError(t, err)
	got := new(bytes.Buffer)
	_, err = got.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, data, got.Bytes())
}

func TestIsCompressed(t *testing.T) {
	t.Parallel()

	assert.False(t, IsCompressed([]byte("Yaz0")))
	assert.False(t, IsCompressed(append([]byte("SARC"), make([]byte, 12)...)))
	reserved := header(1)
	reserved[10] = 1
	assert.False(t, IsCompressed(reserved))
	last := header(1)
	last[15] = 0xaa
	assert.False(t, IsCompressed(last))
	assert.True(t, IsCompressed(header(1)))
}

func TestMaxExpansion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n, size int
		want    int
	}{
		{"empty body", 0, 1 << 30, 0},
		{"declared size fits", 25, 100, 100},
		{"three byte tokens", 6, 1 << 30, 2 * maxRun},
		{"trailing two byte token", 5, 1 << 30, maxRun + 2*17},
		{"trailing literal", 4, 1 << 30, maxRun + 17},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, table.want, maxExpansion(table.n, table.size))
		})
	}
}

func BenchmarkCompress(b *testing.B) {
	data := bytes.Repeat([]byte("BG_unt/Pa1_benchmark.bin\x00\x01\x02\x03"), 1024)
	for _, level := range []int{1, 3, MaxLevel} {
		level := level
		b.Run(fmt.Sprintf("level%d", level), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if _, err := Compress(data, level); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
