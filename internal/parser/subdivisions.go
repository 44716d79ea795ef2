package parser

import (
	"fmt"
)

// Subdivision record flags.
const (
	subdivHasChildren = 0x01
	subdivTerminator  = 0x80
	widthLastInLevel  = 0x8000
	widthMask         = 0x7FFF

	subdivBaseLen  = 15 // offset(3) content(1) lon(3) lat(3) width(2) height(2) flags(1)
	subdivChildLen = 2  // first child record number, levels other than the last
	subdivEndLen   = 3  // payload region end, first record of the table only
)

// Content mask bits describing which object kinds a subdivision's payload holds.
const (
	ContentPoints        = 0x10
	ContentIndexedPoints = 0x20
	ContentLines         = 0x40
	ContentPolygons      = 0x80
)

// Subdivision is one decoded subdivision record.
type Subdivision struct {
	Index       int    // Position in the table, 0-based across all levels
	Level       int    // Level slot in declared order
	Bounds      Rect   // Center ± scaled half extents
	Offset      uint32 // Payload offset
	Size        uint32 // Payload length
	Content     uint8  // Content mask (ContentPoints, ...)
	HasChildren bool
	LastInLevel bool   // Width bit 15, preserved verbatim
	FirstChild  uint16 // 1-based record number in the next level, 0 if absent
	Terminator  bool
}

// subdivRecordLen returns the encoded width of record j of level slot idx.
func subdivRecordLen(levels []Level, idx, j int) int64 {
	n := int64(subdivBaseLen)
	if idx != len(levels)-1 {
		n += subdivChildLen
	}
	if idx == 0 && j == 0 {
		n += subdivEndLen
	}
	return n
}

// decodeSubdivisions reads exactly levels[i].Subdivs records for every level in
// declared order. The whole table is decoded into a staging slice; nothing is
// returned unless every record and the terminator are valid.
//
// Subdivision record (little-endian):
//
//	u24 payload offset
//	u8  content mask
//	i24 center longitude, i24 center latitude
//	u16 half width (bit 15 last-in-level), u16 half height
//	u8  flags (bit 0 has children, bit 7 terminator)
//	u16 first child record number   (all levels except the last)
//	u24 payload region end          (first record of the table only)
func decodeSubdivisions(c *Cursor, hdr *Header, levels []Level, opts DecodeOptions) ([]Subdivision, error) {
	sec := hdr.Subdivs
	sc, err := c.Window(int64(sec.Offset), int64(sec.Size))
	if err != nil {
		return nil, tableError("subdivisions", int64(sec.Offset), ErrMalformedSubdivisionTable, "", err)
	}

	total := 0
	for _, l := range levels {
		total += int(l.Subdivs)
	}
	if total == 0 {
		return nil, tableError("subdivisions", int64(sec.Offset), ErrMalformedSubdivisionTable,
			"no subdivisions declared, terminator missing", nil)
	}

	staged := make([]Subdivision, 0, total)
	var regionEnd uint32

	for idx, lvl := range levels {
		shift := uint(maxLevelBits - lvl.Bits)
		for j := 0; j < int(lvl.Subdivs); j++ {
			at := sc.Pos()
			sd, end, err := readSubdivision(sc, levels, idx, j, shift)
			if err != nil {
				return nil, tableError("subdivisions", at, ErrMalformedSubdivisionTable,
					fmt.Sprintf("level %d record %d of %d", lvl.ID, j+1, lvl.Subdivs), err)
			}
			if idx == 0 && j == 0 {
				regionEnd = end
			}
			sd.Index = len(staged)
			sd.Level = idx

			last := sd.Index == total-1
			if sd.Terminator && !last {
				return nil, tableError("subdivisions", at, ErrMalformedSubdivisionTable,
					fmt.Sprintf("terminator on record %d of %d", sd.Index+1, total), nil)
			}
			if last && !sd.Terminator {
				return nil, tableError("subdivisions", at, ErrMalformedSubdivisionTable,
					"terminator missing on final record", nil)
			}
			if opts.ValidateBounds && !hdr.Bounds.Contains(sd.Bounds) {
				return nil, tableError("subdivisions", at, ErrMalformedSubdivisionTable,
					fmt.Sprintf("record %d bounds %v outside archive bounds %v", sd.Index, sd.Bounds, hdr.Bounds), nil)
			}
			staged = append(staged, sd)
		}
	}

	// Payload length is the distance to the next record's payload, or to the
	// region end for the final record. A payload that would end before it
	// starts has length 0.
	for i := range staged {
		next := regionEnd
		if i+1 < len(staged) {
			next = staged[i+1].Offset
		}
		if next >= staged[i].Offset {
			staged[i].Size = next - staged[i].Offset
		}
	}

	return staged, nil
}

// readSubdivision decodes record j of level slot idx at the cursor position.
// It returns the payload region end, which only the first record carries.
func readSubdivision(c *Cursor, levels []Level, idx, j int, shift uint) (Subdivision, uint32, error) {
	var sd Subdivision
	if c.Remaining() < subdivRecordLen(levels, idx, j) {
		return sd, 0, fmt.Errorf("%w: %d bytes left for a %d byte record",
			ErrTruncated, c.Remaining(), subdivRecordLen(levels, idx, j))
	}

	offset, err := c.U24()
	if err != nil {
		return sd, 0, err
	}
	content, err := c.U8()
	if err != nil {
		return sd, 0, err
	}
	lon, err := c.I24()
	if err != nil {
		return sd, 0, err
	}
	lat, err := c.I24()
	if err != nil {
		return sd, 0, err
	}
	width, err := c.U16()
	if err != nil {
		return sd, 0, err
	}
	height, err := c.U16()
	if err != nil {
		return sd, 0, err
	}
	flags, err := c.U8()
	if err != nil {
		return sd, 0, err
	}

	sd.Offset = offset
	sd.Content = content
	sd.LastInLevel = width&widthLastInLevel != 0
	sd.HasChildren = flags&subdivHasChildren != 0
	sd.Terminator = flags&subdivTerminator != 0
	sd.Bounds = centered(lon, lat,
		int64(width&widthMask)<<shift, int64(height)<<shift)

	if idx != len(levels)-1 {
		if sd.FirstChild, err = c.U16(); err != nil {
			return sd, 0, err
		}
	}

	var end uint32
	if idx == 0 && j == 0 {
		if end, err = c.U24(); err != nil {
			return sd, 0, err
		}
	}
	return sd, end, nil
}
