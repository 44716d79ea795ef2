package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/img/internal/imgtest"
)

// TestDefaultDecodeOptions tests option defaults
func TestDefaultDecodeOptions(t *testing.T) {
	opts := DefaultDecodeOptions()
	assert.True(t, opts.ValidateBounds)
	assert.Equal(t, DefaultBlockSize, opts.BlockSize)
	assert.Positive(t, opts.CacheBlocks)
}

// TestDecodeHeader tests header field extraction
func TestDecodeHeader(t *testing.T) {
	a := imgtest.Box(-2000, -1000, 6000, 3000)
	a.Levels = []imgtest.Level{{ID: 0, Bits: 24}}
	a.Subdivs = [][]imgtest.Subdiv{{{Lon: 2000, Lat: 1000}}}

	tables, err := decode(t, a)
	require.NoError(t, err)

	hdr := tables.Header
	assert.Equal(t, uint16(0xB0), hdr.Length)
	assert.False(t, hdr.Locked)
	assert.Equal(t, Rect{MinLon: -2000, MinLat: -1000, MaxLon: 6000, MaxLat: 3000}, hdr.Bounds)
	assert.Equal(t, Section{Offset: 0xB0, Size: 4}, hdr.Levels)
	assert.Equal(t, Section{Offset: 0xB4, Size: 18}, hdr.Subdivs)
	assert.False(t, hdr.Polygon.Present())
}

// TestDecodeHeaderFailures tests unusable headers
func TestDecodeHeaderFailures(t *testing.T) {
	valid := func() []byte {
		return layered(imgtest.Level{ID: 0, Bits: 24}).Bytes()
	}

	tests := []struct {
		name   string
		data   func() []byte
		wantIs []error
	}{
		{
			name:   "empty subfile",
			data:   func() []byte { return nil },
			wantIs: []error{ErrMalformedHeader, ErrTruncated},
		},
		{
			name: "bad signature",
			data: func() []byte {
				d := valid()
				copy(d[2:], "GARMIN RGN")
				return d
			},
			wantIs: []error{ErrMalformedHeader},
		},
		{
			name: "header length below minimum",
			data: func() []byte {
				d := valid()
				binary.LittleEndian.PutUint16(d, 0x20)
				return d
			},
			wantIs: []error{ErrMalformedHeader},
		},
		{
			name: "header longer than subfile",
			data: func() []byte {
				return valid()[:0x40]
			},
			wantIs: []error{ErrMalformedHeader},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := decodeBytes(tt.data(), DefaultDecodeOptions())
			require.Error(t, err)
			assert.Nil(t, tables)
			for _, want := range tt.wantIs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

// TestDecodeTruncatedSubfile tests every prefix of a valid archive fails
// cleanly instead of reading beyond the declared size
func TestDecodeTruncatedSubfile(t *testing.T) {
	a := layered(imgtest.Level{ID: 1, Bits: 20}, imgtest.Level{ID: 0, Bits: 24})
	data := a.Bytes()

	for n := 0; n < len(data); n++ {
		tables, err := decodeBytes(data[:n], DefaultDecodeOptions())
		require.Error(t, err, "prefix %d", n)
		assert.Nil(t, tables)
	}

	tables, err := decodeBytes(data, DefaultDecodeOptions())
	require.NoError(t, err)
	assert.Len(t, tables.Subdivisions, 2)
}

// TestDecodeErrorMessage tests decode error formatting
func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Section: "levels", Offset: 0xB0, Reason: "duplicate level id 1", Err: ErrMalformedLevelTable}
	assert.Equal(t, "levels at 0xB0: duplicate level id 1: malformed level table", err.Error())

	err = &DecodeError{Section: "header", Offset: 0, Err: ErrMalformedHeader}
	assert.Equal(t, "header at 0x0: malformed header", err.Error())
}
