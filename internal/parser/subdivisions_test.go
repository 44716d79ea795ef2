package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/img/internal/imgtest"
)

// TestDecodeSingleSubdivision tests the one level, one record archive
func TestDecodeSingleSubdivision(t *testing.T) {
	a := imgtest.Box(0, 0, 100, 100)
	a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
	a.Subdivs = [][]imgtest.Subdiv{{imgtest.SubdivBox(24, 0, 0, 100, 100)}}

	tables, err := decode(t, a)
	require.NoError(t, err)
	require.Len(t, tables.Subdivisions, 1)

	sd := tables.Subdivisions[0]
	assert.Equal(t, Rect{MinLon: 0, MinLat: 0, MaxLon: 100, MaxLat: 100}, sd.Bounds)
	assert.True(t, sd.Terminator)
	assert.Equal(t, 0, sd.Level)
	assert.Equal(t, Rect{MinLon: 0, MinLat: 0, MaxLon: 100, MaxLat: 100}, tables.Header.Bounds)
}

// TestDecodeSubdivisionFields tests record widths and preserved flag bits
// across a two level table
func TestDecodeSubdivisionFields(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 1, Bits: 20}, {ID: 0, Bits: 24}}
	a.RegionEnd = 0x90

	parent := imgtest.SubdivBox(20, -worldHalf, -worldHalf, worldHalf, worldHalf)
	parent.Offset = 0x10
	parent.Content = ContentPolygons | ContentLines
	parent.HasChildren = true
	parent.FirstChild = 1
	parent.LastInLevel = true

	west := imgtest.SubdivBox(24, -worldHalf, -worldHalf, 0, worldHalf)
	west.Offset = 0x30
	west.Content = ContentPoints
	east := imgtest.SubdivBox(24, 0, -worldHalf, worldHalf, worldHalf)
	east.Offset = 0x58
	east.Content = ContentIndexedPoints
	east.LastInLevel = true

	a.Subdivs = [][]imgtest.Subdiv{{parent}, {west, east}}

	tables, err := decode(t, a)
	require.NoError(t, err)
	require.Len(t, tables.Subdivisions, 3)

	// 15 + 2 (child) + 3 (region end), then two 15 byte records.
	assert.Equal(t, uint32(50), tables.Header.Subdivs.Size)

	p := tables.Subdivisions[0]
	assert.Equal(t, Rect{MinLon: -worldHalf, MinLat: -worldHalf, MaxLon: worldHalf, MaxLat: worldHalf}, p.Bounds)
	assert.Equal(t, uint32(0x10), p.Offset)
	assert.Equal(t, uint32(0x20), p.Size)
	assert.Equal(t, uint8(ContentPolygons|ContentLines), p.Content)
	assert.True(t, p.HasChildren)
	assert.True(t, p.LastInLevel)
	assert.Equal(t, uint16(1), p.FirstChild)
	assert.False(t, p.Terminator)

	w := tables.Subdivisions[1]
	assert.Equal(t, 1, w.Level)
	assert.Equal(t, 1, w.Index)
	assert.Equal(t, Rect{MinLon: -worldHalf, MinLat: -worldHalf, MaxLon: 0, MaxLat: worldHalf}, w.Bounds)
	assert.Equal(t, uint32(0x28), w.Size)
	assert.False(t, w.LastInLevel)
	assert.Equal(t, uint16(0), w.FirstChild)

	e := tables.Subdivisions[2]
	assert.Equal(t, uint32(0x38), e.Size)
	assert.True(t, e.LastInLevel)
	assert.True(t, e.Terminator)

	start, end := tables.LevelRange(1)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)
}

// TestDecodeSubdivisionScaling tests half extents scaled by level bits
func TestDecodeSubdivisionScaling(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 0, Bits: 20}}
	a.Subdivs = [][]imgtest.Subdiv{{{Lon: 100, Lat: -100, HalfW: 4, HalfH: 2}}}

	tables, err := decode(t, a)
	require.NoError(t, err)
	assert.Equal(t, Rect{MinLon: 36, MinLat: -132, MaxLon: 164, MaxLat: -68}, tables.Subdivisions[0].Bounds)
}

// TestDecodeSubdivisionCounts tests that every level yields its declared count
func TestDecodeSubdivisionCounts(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 2, Bits: 16}, {ID: 1, Bits: 20}, {ID: 0, Bits: 24}}
	a.Subdivs = make([][]imgtest.Subdiv, 3)
	for i, n := range []int{1, 4, 9} {
		for j := 0; j < n; j++ {
			a.Subdivs[i] = append(a.Subdivs[i], imgtest.Subdiv{Lon: int32(j), Lat: int32(i)})
		}
	}

	tables, err := decode(t, a)
	require.NoError(t, err)
	require.Len(t, tables.Subdivisions, 14)
	for idx, lvl := range tables.Levels {
		start, end := tables.LevelRange(idx)
		assert.Equal(t, int(lvl.Subdivs), end-start)
		for _, sd := range tables.Subdivisions[start:end] {
			assert.Equal(t, idx, sd.Level)
		}
	}
}

// TestDecodeSubdivisionFailures tests table level validation
func TestDecodeSubdivisionFailures(t *testing.T) {
	twoRecords := func() imgtest.Archive {
		a := world()
		a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
		a.Subdivs = [][]imgtest.Subdiv{{{Lon: 1}, {Lon: 2}}}
		return a
	}

	tests := []struct {
		name    string
		archive func() imgtest.Archive
		also    error
	}{
		{
			name: "terminator missing",
			archive: func() imgtest.Archive {
				a := twoRecords()
				a.Terminator = -1
				return a
			},
		},
		{
			name: "terminator early",
			archive: func() imgtest.Archive {
				a := twoRecords()
				a.Terminator = 0
				a.TerminatorSet = true
				return a
			},
		},
		{
			name: "fewer records than declared",
			archive: func() imgtest.Archive {
				a := twoRecords()
				a.Levels[0].Declared = 3
				a.Terminator = -1
				return a
			},
			also: ErrTruncated,
		},
		{
			name: "no subdivisions at all",
			archive: func() imgtest.Archive {
				a := world()
				a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
				a.Subdivs = [][]imgtest.Subdiv{{}}
				return a
			},
		},
		{
			name: "subdivision outside archive bounds",
			archive: func() imgtest.Archive {
				a := twoRecords()
				a.Subdivs[0][1] = imgtest.SubdivBox(24, 0, 0, 2*worldHalf, 2)
				return a
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := decode(t, tt.archive())
			require.ErrorIs(t, err, ErrMalformedSubdivisionTable)
			if tt.also != nil {
				assert.ErrorIs(t, err, tt.also)
			}
			assert.Nil(t, tables)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "subdivisions", de.Section)
		})
	}
}

// TestDecodeSubdivisionTableTooShort tests a declared table size that cuts
// the final record
func TestDecodeSubdivisionTableTooShort(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
	a.Subdivs = [][]imgtest.Subdiv{{{Lon: 1}, {Lon: 2}}}
	data := a.Bytes()

	size := binary.LittleEndian.Uint32(data[0x2D:])
	binary.LittleEndian.PutUint32(data[0x2D:], size-1)

	_, err := decodeBytes(data, DefaultDecodeOptions())
	require.ErrorIs(t, err, ErrMalformedSubdivisionTable)
	assert.ErrorIs(t, err, ErrTruncated)
}

// TestDecodeWithoutBoundsValidation tests that bounds checks can be disabled
func TestDecodeWithoutBoundsValidation(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
	a.Subdivs = [][]imgtest.Subdiv{{imgtest.SubdivBox(24, 0, 0, 2*worldHalf, 2)}}

	opts := DefaultDecodeOptions()
	opts.ValidateBounds = false
	tables, err := decodeBytes(a.Bytes(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2*worldHalf), tables.Subdivisions[0].Bounds.MaxLon)
}

// TestDecodeUnorderedPayloadOffsets tests that payload sizes which cannot be
// derived are left at zero without failing the table
func TestDecodeUnorderedPayloadOffsets(t *testing.T) {
	a := world()
	a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
	a.Subdivs = [][]imgtest.Subdiv{{{Lon: 1, Offset: 0x40}, {Lon: 2, Offset: 0x20}, {Lon: 3, Offset: 0x60}}}
	a.RegionEnd = 0x50

	tables, err := decode(t, a)
	require.NoError(t, err)
	require.Len(t, tables.Subdivisions, 3)

	assert.Equal(t, uint32(0), tables.Subdivisions[0].Size, "next payload starts earlier")
	assert.Equal(t, uint32(0x40), tables.Subdivisions[1].Size)
	assert.Equal(t, uint32(0), tables.Subdivisions[2].Size, "region end precedes the final payload")
}
