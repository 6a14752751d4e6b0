/*
Package layout implements the object layout bytecode used by tileset
objects, and renders it into a grid of tile references for a given size.

A layout is a stream of steps terminated by 0xFF:

	0xFE            linefeed, ends the current row
	0b100A0BCD      slope: A sub section, B main section, C set for a
	                ceiling slope, D set for an inward slope
	XX NN PS        tile: X bit 0 repeats along x, bit 1 repeats along y,
	                NN tile number, P six bit parameter, S two bit slot
*/
package layout

import (
	"errors"
	"fmt"
)

const (
	// EndOfObject terminates a layout
	EndOfObject byte = 0xff
	// LinefeedByte ends a row
	LinefeedByte byte = 0xfe

	slopeBit   = 0x80
	slopeExtra = 0x68
)

// ErrTruncatedStep is returned when a tile step is cut short by the end of
// the buffer.
var ErrTruncatedStep = errors.New("truncated tile step")

// Step is a single layout instruction.
type Step interface {
	// Bytes returns the encoded form of the step
	Bytes() []byte
	String() string
}

// Linefeed ends the current row.
type Linefeed struct{}

// Bytes implements Step
func (Linefeed) Bytes() []byte { return []byte{LinefeedByte} }

func (Linefeed) String() string { return "linefeed" }

// Slope starts a section of a diagonal object.
type Slope struct {
	Sub     bool
	Main    bool
	Floor   bool
	Outward bool
	extra   byte
}

// Bytes implements Step
func (s Slope) Bytes() []byte {
	b := slopeBit | s.extra&slopeExtra
	if s.Sub {
		b |= 0x10
	}
	if s.Main {
		b |= 0x04
	}
	if !s.Floor {
		b |= 0x02
	}
	if !s.Outward {
		b |= 0x01
	}
	return []byte{b}
}

func (s Slope) String() string {
	return fmt.Sprintf("slope(sub=%t main=%t floor=%t outward=%t)", s.Sub, s.Main, s.Floor, s.Outward)
}

func parseSlope(b byte) Slope {
	return Slope{
		Sub:     b&0x10 != 0,
		Main:    b&0x04 != 0,
		Floor:   b&0x02 == 0,
		Outward: b&0x01 == 0,
		extra:   b & slopeExtra,
	}
}

// Tile places a tile reference in the current row.
type Tile struct {
	RepeatX   bool
	RepeatY   bool
	TileNum   uint8
	Parameter uint8
	Slot      uint8
	extra     byte
}

// Bytes implements Step
func (t Tile) Bytes() []byte {
	b := t.extra &^ 0x83
	if t.RepeatX {
		b |= 0x01
	}
	if t.RepeatY {
		b |= 0x02
	}
	return []byte{b, t.TileNum, t.Parameter<<2 | t.Slot&0x03}
}

func (t Tile) String() string {
	return fmt.Sprintf("tile(slot=%d num=%#02x param=%d x=%t y=%t)", t.Slot, t.TileNum, t.Parameter, t.RepeatX, t.RepeatY)
}

// IsEmpty reports whether the tile refers to nothing, which is encoded as
// tile 0 of slot 0.
func (t Tile) IsEmpty() bool {
	return t.TileNum == 0 && t.Slot == 0
}

// Index returns the global tile index, slot*256 + tile number.
func (t Tile) Index() int {
	return int(t.Slot)*256 + int(t.TileNum)
}

// WithIndex returns a copy of t pointing at tile number num in slot.
func (t Tile) WithIndex(slot, num uint8) Tile {
	t.Slot = slot & 0x03
	t.TileNum = num
	return t
}

func parseTile(b []byte) Tile {
	return Tile{
		RepeatX:   b[0]&0x01 != 0,
		RepeatY:   b[0]&0x02 != 0,
		TileNum:   b[1],
		Parameter: b[2] >> 2,
		Slot:      b[2] & 0x03,
		extra:     b[0] &^ 0x03,
	}
}
