package object

import (
	"encoding/json"
	"testing"

	"github.com/bodgit/onetileset/layout"
	"github.com/bodgit/onetileset/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portableRoundTrip(t *testing.T, obj *Object) (*Portable, *Object) {
	p, err := obj.Portable()
	require.NoError(t, err)

	tiles, err := tile.Split(p.Sheet.Image, p.Sheet.Normal, p.Sheet.Collisions, false)
	require.NoError(t, err)

	back, warnings, err := FromPortable(obj.Name, p.Layout, p.Metadata, tiles)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	return p, back
}

func TestPortableRoundTrip(t *testing.T) {
	t.Parallel()

	a, b, c, d := colored(1), colored(2), colored(3), colored(4)
	obj, err := New([]layout.Step{
		layout.Tile{}, layout.Tile{}, lf,
		layout.Tile{}, layout.Tile{}, lf,
	}, []*tile.Tile{a, b, c, nil}, 2, 2)
	require.NoError(t, err)
	obj.Name = "ground"
	obj.Role = RoleTop
	obj.Description = "grassy"
	obj.RandomizeY = true
	obj.Replacements = []*tile.Tile{d}

	p, back := portableRoundTrip(t, obj)

	// Replacement goes below the object as it only randomizes vertically
	assert.Equal(t, 2, p.Sheet.Columns)
	assert.Equal(t, 3, p.Sheet.Rows)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x01, 0x00, 0x01, 0x01, 0xfe,
		0x00, 0x02, 0x01, 0x00, 0x00, 0x00, 0xfe,
	}, p.Layout)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(p.Metadata, &m))
	assert.Equal(t, map[string]interface{}{
		"width":       float64(2),
		"height":      float64(2),
		"replace_y":   true,
		"replace":     []interface{}{float64(4)},
		"role":        "t",
		"description": "grassy",
	}, m)

	assert.True(t, Equal(obj, back))
	assert.Equal(t, "ground", back.Name)
	assert.Equal(t, RoleTop, back.Role)
	assert.Equal(t, "grassy", back.Description)
	assert.True(t, back.RandomizeY)
	assert.False(t, back.RandomizeX)
	assert.Nil(t, back.Tiles[3])
	require.Len(t, back.Replacements, 1)
	assert.True(t, tile.Equal(d, back.Replacements[0]))
}

func TestPortableHorizontalReplacements(t *testing.T) {
	t.Parallel()

	obj, err := New([]layout.Step{layout.Tile{}, lf}, []*tile.Tile{colored(1)}, 1, 1)
	require.NoError(t, err)
	obj.RandomizeX = true
	obj.RandomizeY = true
	obj.Replacements = []*tile.Tile{colored(2), colored(3)}

	p, back := portableRoundTrip(t, obj)
	assert.Equal(t, 3, p.Sheet.Columns)
	assert.Equal(t, 1, p.Sheet.Rows)

	var m Metadata
	require.NoError(t, json.Unmarshal(p.Metadata, &m))
	assert.Equal(t, []int{1, 2}, m.Replace)
	assert.True(t, Equal(obj, back))
}

func TestPortableCeilingSlope(t *testing.T) {
	t.Parallel()

	a, b := colored(1), colored(2)
	obj, err := New([]layout.Step{layout.Slope{}, layout.Tile{}, lf, layout.Tile{}, lf}, []*tile.Tile{a, b}, 1, 2)
	require.NoError(t, err)
	obj.Role = RoleBottomSlope

	p, back := portableRoundTrip(t, obj)

	// Rows are stored bottom up
	assert.Equal(t, []byte{0x83, 0x00, 0x01, 0x01, 0xfe, 0x00, 0x00, 0x01, 0xfe}, p.Layout)
	assert.True(t, Equal(obj, back))
	assert.Equal(t, RoleBottomSlope, back.Role)
}

func TestPortableRepeatAdjustsRow(t *testing.T) {
	t.Parallel()

	obj, err := New([]layout.Step{
		layout.Tile{}, layout.Tile{RepeatX: true}, layout.Tile{}, lf,
	}, []*tile.Tile{colored(1), colored(2), colored(3)}, 4, 1)
	require.NoError(t, err)

	p, back := portableRoundTrip(t, obj)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x01, 0x01, 0x01, 0x00, 0x03, 0x01, 0xfe}, p.Layout)
	assert.True(t, Equal(obj, back))
}

func TestPortableFiles(t *testing.T) {
	t.Parallel()

	obj, err := New([]layout.Step{layout.Tile{}, lf}, []*tile.Tile{colored(1)}, 1, 1)
	require.NoError(t, err)

	p, err := obj.Portable()
	require.NoError(t, err)
	files, err := p.Files()
	require.NoError(t, err)

	var names []string
	for name := range files {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"object.png", "object_nml.png", "object.colls", "object.object.objlyt", "object.object.json"}, names)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, files["object.colls"])
}

func TestFromPortableMissingTile(t *testing.T) {
	t.Parallel()

	lyt := layout.Encode([]layout.Step{layout.Tile{TileNum: 9, Slot: 1}, lf})
	obj, warnings, err := FromPortable("broken", lyt, []byte(`{"width":1,"height":1}`), []*tile.Tile{colored(1)})
	require.NoError(t, err)
	assert.Equal(t, []Warning{{Object: "broken", Index: 9}}, warnings)
	assert.True(t, obj.Tiles[0] == tile.Unavailable)
	assert.Equal(t, RoleUnknown, obj.Role)
}

func TestFromPortableErrors(t *testing.T) {
	t.Parallel()

	_, _, err := FromPortable("x", nil, []byte(`{`), nil)
	assert.Error(t, err)

	_, _, err = FromPortable("x", nil, []byte(`{"width":0,"height":1}`), nil)
	assert.Error(t, err)

	_, _, err = FromPortable("x", nil, []byte(`{"width":1,"height":1,"role":"nope"}`), nil)
	assert.Error(t, err)
}

func TestPortableTooLarge(t *testing.T) {
	t.Parallel()

	obj := &Object{Width: 17, Height: 16}
	_, err := obj.Portable()
	assert.Error(t, err)
}
