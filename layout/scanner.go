package layout

import (
	"bytes"
	"fmt"
)

// Scanner walks a layout buffer one step at a time. The buffer is never
// modified so a scan can be restarted with Reset.
type Scanner struct {
	buf  []byte
	off  int
	err  error
	done bool
	term bool
}

// NewScanner returns a Scanner reading from buf.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Next returns the next step. It returns false at EndOfObject, at the end
// of the buffer or after an error.
func (s *Scanner) Next() (Step, bool) {
	if s.done || s.off >= len(s.buf) {
		s.done = true
		return nil, false
	}

	b := s.buf[s.off]
	switch {
	case b == EndOfObject:
		s.off++
		s.done, s.term = true, true
		return nil, false
	case b == LinefeedByte:
		s.off++
		return Linefeed{}, true
	case b&slopeBit != 0:
		s.off++
		return parseSlope(b), true
	}

	if s.off+3 > len(s.buf) {
		s.err = fmt.Errorf("%w at offset %#x", ErrTruncatedStep, s.off)
		s.done = true
		return nil, false
	}
	t := parseTile(s.buf[s.off : s.off+3])
	s.off += 3
	return t, true
}

// Offset returns the position of the next unread byte.
func (s *Scanner) Offset() int { return s.off }

// Err returns the error that stopped the scan, if any.
func (s *Scanner) Err() error { return s.err }

// Reset rewinds the scanner to the start of the buffer.
func (s *Scanner) Reset() {
	s.off, s.err, s.done, s.term = 0, nil, false, false
}

// Parse returns every step in buf up to the first EndOfObject.
func Parse(buf []byte) ([]Step, error) {
	var steps []Step
	s := NewScanner(buf)
	for {
		step, ok := s.Next()
		if !ok {
			break
		}
		steps = append(steps, step)
	}
	return steps, s.Err()
}

// Encode returns the bytecode for steps, without a terminator.
func Encode(steps []Step) []byte {
	b := new(bytes.Buffer)
	for _, step := range steps {
		b.Write(step.Bytes())
	}
	return b.Bytes()
}

// Terminate returns the bytecode for steps followed by EndOfObject.
func Terminate(steps []Step) []byte {
	return append(Encode(steps), EndOfObject)
}

// Slice returns a copy of the layout at the start of buf, up to but not
// including its EndOfObject. Tile steps are skipped over whole so a tile
// number of 0xFF does not end the layout early.
func Slice(buf []byte) ([]byte, error) {
	s := NewScanner(buf)
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	end := s.Offset()
	if s.term {
		end--
	}
	return append([]byte(nil), buf[:end]...), nil
}

// Tiles returns only the tile steps of steps, in order.
func Tiles(steps []Step) []Tile {
	var tiles []Tile
	for _, step := range steps {
		if t, ok := step.(Tile); ok {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// FirstSlope returns the first slope step, if any.
func FirstSlope(steps []Step) (Slope, bool) {
	for _, step := range steps {
		if s, ok := step.(Slope); ok {
			return s, true
		}
	}
	return Slope{}, false
}
