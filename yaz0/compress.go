package yaz0

import (
	"encoding/binary"
	"fmt"
)

const padTo = 16

// Compress returns data compressed as a Yaz0 stream. Level 0 stores every
// byte as a literal. Levels 1 to MaxLevel search a back-reference window that
// grows with the level, with longer maximum matches, at the cost of speed.
// The output is zero-padded to a multiple of 16 bytes.
func Compress(data []byte, level int) ([]byte, error) {
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d", ErrBadLevel, level)
	}

	out := make([]byte, headerSize, headerSize+len(data)+len(data)/8+padTo)
	copy(out, Magic[:])
	binary.BigEndian.PutUint32(out[4:8], uint32(len(data)))

	if level == 0 {
		out = store(out, data)
	} else {
		window := 4095 * (level + 1) / 10
		maxLen := (15*(level+1)+9)/10 + 2
		out = compress(out, data, window, maxLen)
	}

	if r := len(out) % padTo; r != 0 {
		out = append(out, make([]byte, padTo-r)...)
	}

	return out, nil
}

func store(out, data []byte) []byte {
	for i := 0; i < len(data); i += 8 {
		end := i + 8
		if end > len(data) {
			end = len(data)
		}
		out = append(out, 0xff)
		out = append(out, data[i:end]...)
	}
	return out
}

// match finds the longest run at pos that also occurs entirely within the
// window before pos. The nearest occurrence wins a tie.
func match(data []byte, pos, window, maxLen int) (length, distance int) {
	start := pos - window
	if start < 0 {
		start = 0
	}
	if rem := len(data) - pos; rem < maxLen {
		maxLen = rem
	}
	if maxLen < minRun {
		return 0, 0
	}

	for j := pos - 1; j >= start; j-- {
		limit := maxLen
		if pos-j < limit {
			limit = pos - j
		}
		if limit <= length {
			continue
		}
		n := 0
		for n < limit && data[j+n] == data[pos+n] {
			n++
		}
		if n > length {
			length, distance = n, pos-j
			if length == maxLen {
				break
			}
		}
	}

	if length < minRun {
		return 0, 0
	}
	return length, distance
}

func compress(out, data []byte, window, maxLen int) []byte {
	if window > maxDistance {
		window = maxDistance
	}
	if maxLen > maxRun {
		maxLen = maxRun
	}

	pos := 0
	for pos < len(data) {
		ctrl := len(out)
		out = append(out, 0)

		for bit := 0; bit < 8 && pos < len(data); bit++ {
			n, dist := match(data, pos, window, maxLen)
			if n == 0 {
				out[ctrl] |= 0x80 >> uint(bit)
				out = append(out, data[pos])
				pos++
				continue
			}

			rel := dist - 1
			if n >= 0x12 {
				out = append(out, byte(rel>>8), byte(rel), byte(n-0x12))
			} else {
				out = append(out, byte((n-2)<<4|rel>>8), byte(rel))
			}
			pos += n
		}
	}
	return out
}
