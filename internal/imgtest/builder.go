// Package imgtest builds synthetic TRE subfiles for tests.
package imgtest

import (
	"encoding/binary"
)

// Level describes one level record.
type Level struct {
	ID   uint8
	Bits uint8
	Last bool // Set the last-level marker on this record

	// Declared overrides the subdivision count written to the record.
	// Zero means len of the matching Subdivs entry.
	Declared uint16
}

// Subdiv describes one subdivision record with unscaled half extents.
type Subdiv struct {
	Offset      uint32
	Content     uint8
	Lon, Lat    int32
	HalfW       uint16
	HalfH       uint16
	LastInLevel bool
	HasChildren bool
	FirstChild  uint16
}

// Entry is one extended type table entry.
type Entry struct {
	Type     uint16
	MinLevel uint8
}

// TypeTable describes an extended type table.
type TypeTable struct {
	ItemSize uint16
	Entries  []Entry
	Raw      []byte // Written verbatim instead of Entries when non-nil
	Offset   uint32 // Overrides the computed offset when non-zero
	Size     uint32 // Overrides the computed size when non-zero
}

// Archive describes a whole TRE subfile.
type Archive struct {
	HeaderLen uint16 // Default 0xB0
	Signature string // Default "GARMIN TRE"

	CenterLon, CenterLat int32
	HalfW, HalfH         uint32

	Levels    []Level
	Subdivs   [][]Subdiv // One slice per decoded level
	RegionEnd uint32

	// Terminator selects the record index (0-based, whole table) carrying the
	// terminator flag. Zero value means the final record; -1 means none.
	Terminator int
	// TerminatorSet makes Terminator authoritative even when it is zero.
	TerminatorSet bool

	Polygon *TypeTable
	Point   *TypeTable

	Locked bool
	Key    uint32
}

// Box returns an archive whose global bounds are [minLon,minLat]-[maxLon,maxLat].
// Half extents are rounded down, so use even spans.
func Box(minLon, minLat, maxLon, maxLat int32) Archive {
	return Archive{
		CenterLon: (minLon + maxLon) / 2,
		CenterLat: (minLat + maxLat) / 2,
		HalfW:     uint32(maxLon-minLon) / 2,
		HalfH:     uint32(maxLat-minLat) / 2,
	}
}

// SubdivBox returns a subdivision covering [minLon,minLat]-[maxLon,maxLat] at
// the given resolution. Spans must be even multiples of 1<<(24-bits).
func SubdivBox(bits uint8, minLon, minLat, maxLon, maxLat int32) Subdiv {
	shift := 24 - uint(bits)
	return Subdiv{
		Lon:   (minLon + maxLon) / 2,
		Lat:   (minLat + maxLat) / 2,
		HalfW: uint16(uint32(maxLon-minLon) / 2 >> shift),
		HalfH: uint16(uint32(maxLat-minLat) / 2 >> shift),
	}
}

// Bytes encodes the archive.
func (a Archive) Bytes() []byte {
	hdrLen := a.HeaderLen
	if hdrLen == 0 {
		hdrLen = 0xB0
	}
	sig := a.Signature
	if sig == "" {
		sig = "GARMIN TRE"
	}

	decoded := len(a.Levels)
	for i, l := range a.Levels {
		if l.Last {
			decoded = i + 1
			break
		}
	}

	levels := a.levelTable()
	if a.Locked {
		levels = lock(levels, a.Key)
	}
	subdivs := a.subdivTable(decoded)

	levelsOff := uint32(hdrLen)
	subdivOff := levelsOff + uint32(len(levels))
	next := subdivOff + uint32(len(subdivs))

	buf := make([]byte, hdrLen)
	binary.LittleEndian.PutUint16(buf[0:], hdrLen)
	copy(buf[0x02:], sig)
	if a.Locked {
		buf[0x0D] = 1
	}
	put24(buf[0x15:], uint32(a.CenterLon))
	put24(buf[0x18:], uint32(a.CenterLat))
	put24(buf[0x1B:], a.HalfW)
	put24(buf[0x1E:], a.HalfH)
	binary.LittleEndian.PutUint32(buf[0x21:], levelsOff)
	binary.LittleEndian.PutUint32(buf[0x25:], uint32(len(levels)))
	binary.LittleEndian.PutUint32(buf[0x29:], subdivOff)
	binary.LittleEndian.PutUint32(buf[0x2D:], uint32(len(subdivs)))

	buf = append(buf, levels...)
	buf = append(buf, subdivs...)

	for _, ext := range []struct {
		at    int
		table *TypeTable
	}{{0x54, a.Polygon}, {0x62, a.Point}} {
		if ext.table == nil || int(hdrLen) < ext.at+10 {
			continue
		}
		data := ext.table.encode()
		off, size := next, uint32(len(data))
		if ext.table.Offset != 0 {
			off = ext.table.Offset
		}
		if ext.table.Size != 0 {
			size = ext.table.Size
		}
		binary.LittleEndian.PutUint32(buf[ext.at:], off)
		binary.LittleEndian.PutUint32(buf[ext.at+4:], size)
		binary.LittleEndian.PutUint16(buf[ext.at+8:], ext.table.ItemSize)
		buf = append(buf, data...)
		next += uint32(len(data))
	}

	if a.Locked && int(hdrLen) >= 0xAE {
		binary.LittleEndian.PutUint32(buf[0xAA:], a.Key)
	}
	return buf
}

func (a Archive) levelTable() []byte {
	out := make([]byte, 0, 4*len(a.Levels))
	for i, l := range a.Levels {
		flag := l.Bits & 0x7F
		if l.Last {
			flag |= 0x80
		}
		count := l.Declared
		if count == 0 && i < len(a.Subdivs) {
			count = uint16(len(a.Subdivs[i]))
		}
		out = append(out, flag, l.ID, byte(count), byte(count>>8))
	}
	return out
}

func (a Archive) subdivTable(decoded int) []byte {
	total := 0
	for _, level := range a.Subdivs {
		total += len(level)
	}
	term := total - 1
	if a.TerminatorSet || a.Terminator != 0 {
		term = a.Terminator
	}

	var out []byte
	n := 0
	for idx, level := range a.Subdivs {
		for j, s := range level {
			rec := make([]byte, 15)
			put24(rec[0:], s.Offset)
			rec[3] = s.Content
			put24(rec[4:], uint32(s.Lon))
			put24(rec[7:], uint32(s.Lat))
			w := s.HalfW & 0x7FFF
			if s.LastInLevel {
				w |= 0x8000
			}
			binary.LittleEndian.PutUint16(rec[10:], w)
			binary.LittleEndian.PutUint16(rec[12:], s.HalfH)
			if s.HasChildren {
				rec[14] |= 0x01
			}
			if n == term {
				rec[14] |= 0x80
			}
			if idx != decoded-1 {
				rec = binary.LittleEndian.AppendUint16(rec, s.FirstChild)
			}
			if idx == 0 && j == 0 {
				end := make([]byte, 3)
				put24(end, a.RegionEnd)
				rec = append(rec, end...)
			}
			out = append(out, rec...)
			n++
		}
	}
	return out
}

func (t *TypeTable) encode() []byte {
	if t.Raw != nil {
		return t.Raw
	}
	var out []byte
	for _, e := range t.Entries {
		switch t.ItemSize {
		case 2:
			out = append(out, byte(e.Type), e.MinLevel)
		case 3:
			out = append(out, byte(e.Type), byte(e.Type>>8), e.MinLevel)
		}
	}
	return out
}

func put24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

var shuffle = [16]uint32{
	0xb, 0xc, 0xa, 0x0,
	0x8, 0xf, 0x2, 0x1,
	0x6, 0x4, 0x9, 0x3,
	0xd, 0x5, 0x7, 0xe,
}

// lock obfuscates a level table so that the decoder's unlock restores it.
func lock(src []byte, key uint32) []byte {
	dst := make([]byte, len(src))
	sum := shuffle[((key>>24)+(key>>16)+(key>>8)+key)&0xf]
	ring := uint32(16)
	next := func() uint32 {
		d := sum + (key >> ring) + shuffle[(key>>ring)&0xf]
		if ring == 0 {
			ring = 16
		} else {
			ring -= 4
		}
		return d
	}
	for i, b := range src {
		upper := uint32(b>>4) + next()
		lower := uint32(b) + next()
		dst[i] = byte((upper<<4)&0xf0 | lower&0xf)
	}
	return dst
}
