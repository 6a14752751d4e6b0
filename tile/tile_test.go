package tile

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.NRGBA) *image.NRGBA {
	return imaging.New(Size, Size, c)
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tile  *Tile
		empty bool
	}{
		{"nil", nil, true},
		{"unavailable", Unavailable, true},
		{"blank", New(nil, nil, nil), true},
		{"faint", New(solid(color.NRGBA{255, 0, 0, MaxEmptyAlpha}), nil, nil), true},
		{"visible", New(solid(color.NRGBA{255, 0, 0, MaxEmptyAlpha + 1}), nil, nil), false},
		{"solid collision", New(nil, nil, []byte{0, 0, 0, 0, 0, 0, 0, 1}), false},
	}

	for _, table := range tests {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, table.empty, table.tile.IsEmpty())
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	red := solid(color.NRGBA{200, 10, 10, 255})
	nearRed := solid(color.NRGBA{200 + MaxChannelDelta, 10 - MaxChannelDelta, 10, 255})
	farRed := solid(color.NRGBA{200 + MaxChannelDelta + 1, 10, 10, 255})

	a := New(red, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	assert.True(t, Equal(a, a))
	assert.True(t, Equal(a, a.Clone()))
	assert.True(t, Equal(a, New(nearRed, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8})))
	assert.False(t, Equal(a, New(farRed, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8})))
	assert.False(t, Equal(a, New(red, nil, []byte{1, 2, 3, 4, 5, 6, 7, 9})))
	assert.False(t, Equal(a, New(red, solid(color.NRGBA{0, 0, 0, 255}), []byte{1, 2, 3, 4, 5, 6, 7, 8})))

	// Transparent pixels compare equal whatever their colour
	assert.True(t, Equal(New(solid(color.NRGBA{255, 255, 255, 1}), nil, nil), New(nil, nil, nil)))
	assert.True(t, Equal(nil, New(nil, nil, nil)))
	assert.False(t, Equal(nil, a))
}

func TestCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	a := New(solid(color.NRGBA{1, 2, 3, 255}), nil, []byte{9})
	b := a.Clone()
	b.Image.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	b.Collisions[0] = 0

	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, a.Image.NRGBAAt(0, 0))
	assert.Equal(t, byte(9), a.Collisions[0])
	assert.Nil(t, (*Tile)(nil).Clone())
}

func TestImagesIdenticalSize(t *testing.T) {
	t.Parallel()

	assert.False(t, ImagesIdentical(imaging.New(2, 2, DefaultImageColor), imaging.New(2, 3, DefaultImageColor)))

	// Offset origins still compare by position
	m := imaging.New(4, 4, color.NRGBA{5, 5, 5, 255})
	sub := m.SubImage(image.Rect(2, 2, 4, 4))
	assert.True(t, ImagesIdentical(sub, imaging.New(2, 2, color.NRGBA{5, 5, 5, 255})))
}

func TestAddPadding(t *testing.T) {
	t.Parallel()

	m := imaging.New(Size, Size, color.NRGBA{0, 0, 0, 255})
	m.SetNRGBA(0, 0, color.NRGBA{1, 0, 0, 255})
	m.SetNRGBA(Size-1, 0, color.NRGBA{2, 0, 0, 255})
	m.SetNRGBA(0, Size-1, color.NRGBA{3, 0, 0, 255})
	m.SetNRGBA(Size-1, Size-1, color.NRGBA{4, 0, 0, 255})
	m.SetNRGBA(30, 0, color.NRGBA{5, 0, 0, 255})

	p := AddPadding(m)
	require.Equal(t, image.Rect(0, 0, PaddedSize, PaddedSize), p.Bounds())

	assert.Equal(t, uint8(1), p.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(1), p.NRGBAAt(2, 2).R)
	assert.Equal(t, uint8(2), p.NRGBAAt(63, 1).R)
	assert.Equal(t, uint8(3), p.NRGBAAt(1, 63).R)
	assert.Equal(t, uint8(4), p.NRGBAAt(63, 63).R)
	assert.Equal(t, uint8(5), p.NRGBAAt(32, 0).R)
	assert.Equal(t, uint8(5), p.NRGBAAt(32, 1).R)
	assert.Equal(t, uint8(0), p.NRGBAAt(32, 3).R)
}

func TestSheetRoundTrip(t *testing.T) {
	t.Parallel()

	for _, padded := range []bool{true, false} {
		s := NewSheet(3, 2, padded)
		a := New(solid(color.NRGBA{10, 20, 30, 255}), solid(color.NRGBA{128, 127, 255, 255}), []byte{1, 1, 1, 1, 0, 0, 0, 0})
		b := New(solid(color.NRGBA{90, 80, 70, 255}), nil, []byte{2})
		s.Put(0, a)
		s.PutAt(2, 1, b)
		s.Put(99, a)

		tiles, err := Split(s.Image, s.Normal, s.Collisions, padded)
		require.NoError(t, err)
		require.Len(t, tiles, 6)

		assert.True(t, Equal(a, tiles[0]), "padded %t", padded)
		assert.True(t, Equal(b, tiles[5]), "padded %t", padded)
		assert.True(t, tiles[1].IsEmpty())
		assert.True(t, tiles[4].IsEmpty())
	}
}

func TestRetailSheet(t *testing.T) {
	t.Parallel()

	s := NewRetailSheet()
	assert.Equal(t, image.Rect(0, 0, 2048, 512), s.Image.Bounds())
	assert.Len(t, s.Collisions, 2048)
	assert.Equal(t, SheetTiles, s.Len())
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	_, err := Split(nil, nil, nil, false)
	assert.Error(t, err)

	_, err = Split(imaging.New(120, 60, DefaultImageColor), imaging.New(60, 60, DefaultImageColor), nil, false)
	assert.Error(t, err)

	// Short collision data reads as zero, a missing normal map reads flat
	tiles, err := Split(imaging.New(120, 60, DefaultImageColor), nil, []byte{1, 2, 3}, false)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, [CollisionSize]byte{1, 2, 3}, tiles[0].Collisions)
	assert.Equal(t, [CollisionSize]byte{}, tiles[1].Collisions)
	assert.Equal(t, DefaultNormalColor, tiles[1].Normal.NRGBAAt(0, 0))
}

func TestCompose(t *testing.T) {
	t.Parallel()

	a := New(solid(color.NRGBA{1, 2, 3, 255}), nil, nil)
	m := Compose([][]*Tile{{a, nil}, {nil, a}})
	require.Equal(t, image.Rect(0, 0, 2*Size, 2*Size), m.Bounds())
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, m.NRGBAAt(10, 10))
	assert.Equal(t, DefaultImageColor, m.NRGBAAt(Size+10, 10))
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, m.NRGBAAt(Size+10, Size+10))

	assert.Equal(t, image.Rect(0, 0, 0, 0), Compose(nil).Bounds())
}

func TestPaletted(t *testing.T) {
	t.Parallel()

	m := imaging.New(8, 8, color.NRGBA{255, 0, 0, 255})
	for x := 0; x < 4; x++ {
		for y := 0; y < 8; y++ {
			m.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}

	pm := Paletted(m, 4)
	assert.Equal(t, image.Rect(0, 0, 8, 8), pm.Bounds())
	assert.True(t, len(pm.Palette) <= 4)
	assert.NotEqual(t, pm.ColorIndexAt(0, 0), pm.ColorIndexAt(7, 0))

	assert.Equal(t, image.Rect(0, 0, 0, 0), Paletted(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 4).Bounds())
}
