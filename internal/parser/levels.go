package parser

import (
	"encoding/binary"
	"fmt"
)

const (
	levelRecordLen = 4
	levelLastFlag  = 0x80
	levelBitsMask  = 0x7F
	maxLevelBits   = 24
)

// Level is one detail level of the map.
type Level struct {
	ID        uint8  // Level number as declared by the archive
	Bits      uint8  // Coordinate resolution in bits (1-24)
	Subdivs   uint16 // Number of subdivision records belonging to this level
	Last      bool   // Last-level marker was set on this record
	TableSlot int    // Position in declared order
}

// decodeLevels reads the level table described by hdr.
//
// Level record (4 bytes):
//
//	byte 0   bit 7 last-level marker, bits 0-6 resolution bits
//	byte 1   level id
//	byte 2-3 u16 subdivision count
//
// Records are read until the declared size is exhausted or a record carries
// the last-level marker; records after the marker are not read.
func decodeLevels(c *Cursor, hdr *Header) ([]Level, error) {
	sec := hdr.Levels
	if sec.Size == 0 || sec.Size%levelRecordLen != 0 {
		return nil, tableError("levels", int64(sec.Offset), ErrMalformedLevelTable,
			fmt.Sprintf("table size %d is not a positive multiple of %d", sec.Size, levelRecordLen), nil)
	}
	if sec.Size > maxLevelRecord*levelRecordLen {
		return nil, tableError("levels", int64(sec.Offset), ErrMalformedLevelTable,
			fmt.Sprintf("table size %d exceeds %d records", sec.Size, maxLevelRecord), nil)
	}

	lc, err := c.Window(int64(sec.Offset), int64(sec.Size))
	if err != nil {
		return nil, tableError("levels", int64(sec.Offset), ErrMalformedLevelTable, "", err)
	}
	raw, err := lc.Bytes(int(sec.Size))
	if err != nil {
		return nil, tableError("levels", int64(sec.Offset), ErrMalformedLevelTable, "table bytes", err)
	}
	if hdr.Locked {
		raw = unlock(raw, hdr.Key)
	}

	var levels []Level
	seen := make(map[uint8]bool)
	for i := 0; i+levelRecordLen <= len(raw); i += levelRecordLen {
		rec := raw[i : i+levelRecordLen]
		lvl := Level{
			Bits:      rec[0] & levelBitsMask,
			Last:      rec[0]&levelLastFlag != 0,
			ID:        rec[1],
			Subdivs:   binary.LittleEndian.Uint16(rec[2:4]),
			TableSlot: len(levels),
		}
		at := int64(sec.Offset) + int64(i)

		if lvl.Bits == 0 || lvl.Bits > maxLevelBits {
			return nil, tableError("levels", at, ErrMalformedLevelTable,
				fmt.Sprintf("level %d has %d bits", lvl.ID, lvl.Bits), nil)
		}
		if seen[lvl.ID] {
			return nil, tableError("levels", at, ErrMalformedLevelTable,
				fmt.Sprintf("duplicate level id %d", lvl.ID), nil)
		}
		seen[lvl.ID] = true

		levels = append(levels, lvl)
		if lvl.Last {
			break
		}
	}

	if !monotonic(levels) {
		return nil, tableError("levels", int64(sec.Offset), ErrMalformedLevelTable,
			"resolution bits change direction", nil)
	}
	return levels, nil
}

// monotonic reports whether the bits sequence never reverses direction.
// Either ascending or descending order is accepted; the archive decides.
func monotonic(levels []Level) bool {
	dir := 0
	for i := 1; i < len(levels); i++ {
		d := int(levels[i].Bits) - int(levels[i-1].Bits)
		switch {
		case d == 0:
		case dir == 0:
			dir = d
		case (d > 0) != (dir > 0):
			return false
		}
	}
	return true
}

// CoarseToFine returns level slots ordered from fewest to most bits: the
// declared order for ascending tables, reversed for descending ones.
func CoarseToFine(levels []Level) []int {
	order := make([]int, len(levels))
	descending := false
	for i := 1; i < len(levels); i++ {
		if levels[i].Bits != levels[i-1].Bits {
			descending = levels[i].Bits < levels[i-1].Bits
			break
		}
	}
	for i := range levels {
		if descending {
			order[i] = len(levels) - 1 - i
		} else {
			order[i] = i
		}
	}
	return order
}
