package parser

import (
	"io"
)

// DecodeOptions configures decoding behavior.
type DecodeOptions struct {
	// ValidateBounds: if true, every subdivision must lie within the archive
	// bounds. Default: true
	ValidateBounds bool

	// BlockSize is the read granularity against the byte source.
	// Default: DefaultBlockSize
	BlockSize int

	// CacheBlocks is the number of blocks kept in the LRU block cache.
	// Zero disables caching. Default: 64
	CacheBlocks int
}

// DefaultDecodeOptions returns decode options with defaults.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		ValidateBounds: true,
		BlockSize:      DefaultBlockSize,
		CacheBlocks:    64,
	}
}

// Tables holds every table decoded from a TRE subfile.
type Tables struct {
	Header       *Header
	Levels       []Level
	Subdivisions []Subdivision
	Polygons     TypeTable
	Points       TypeTable
	Blocks       BlockStats
}

// LevelRange returns the [start, end) slice bounds of level slot idx in
// Subdivisions.
func (t *Tables) LevelRange(idx int) (int, int) {
	start := 0
	for i := 0; i < idx; i++ {
		start += int(t.Levels[i].Subdivs)
	}
	return start, start + int(t.Levels[idx].Subdivs)
}

// Decode reads the TRE subfile held in the first size bytes of src.
//
// Decoding is strictly sequential: header, level table, subdivision table,
// then the two extended type tables. Any header, level or subdivision
// failure aborts the decode and no tables are returned. Extended table
// problems are recorded in TypeTable.Skipped instead.
func Decode(src io.ReaderAt, size int64, opts DecodeOptions) (*Tables, error) {
	c, err := NewCursor(src, size, opts.BlockSize, opts.CacheBlocks)
	if err != nil {
		return nil, err
	}

	// 1. Header
	hdr, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}

	// 2. Level table
	levels, err := decodeLevels(c, hdr)
	if err != nil {
		return nil, err
	}

	// 3. Subdivision table, fully staged before anything is exposed
	subdivs, err := decodeSubdivisions(c, hdr, levels, opts)
	if err != nil {
		return nil, err
	}

	// 4. Extended type tables, best effort
	polygons := decodeTypeTable(c, "polygon", hdr.Polygon)
	points := decodeTypeTable(c, "point", hdr.Point)

	return &Tables{
		Header:       hdr,
		Levels:       levels,
		Subdivisions: subdivs,
		Polygons:     polygons,
		Points:       points,
		Blocks:       c.Stats(),
	}, nil
}
