package img

import (
	"fmt"
	"io"
	"os"

	"github.com/beetlebugorg/img/internal/parser"
)

// Level is one detail level of the archive.
type Level struct {
	ID           uint8  // Level number declared by the archive
	Bits         uint8  // Coordinate resolution in bits
	Subdivisions uint16 // Declared subdivision count
}

// Subdivision is one rectangular partition of the map at a detail level.
//
// Subdivisions returned by an Archive point into the archive's table; they
// are shared, read-only handles and must not be modified.
type Subdivision struct {
	Index       int    // Position in the subdivision table
	Level       int    // Level position in declared order (see Archive.Levels)
	Bounds      Rect   // Geographic extent
	Offset      uint32 // Payload offset in the RGN subfile
	Size        uint32 // Payload length
	Content     uint8  // Object kinds present in the payload
	HasChildren bool   // Finer subdivisions exist below this one
	LastInLevel bool   // Last-in-level bit, as stored
	FirstChild  uint16 // 1-based record number of the first child, 0 if none
}

// HasPoints reports whether the payload holds points.
func (s *Subdivision) HasPoints() bool { return s.Content&parser.ContentPoints != 0 }

// HasIndexedPoints reports whether the payload holds indexed points.
func (s *Subdivision) HasIndexedPoints() bool { return s.Content&parser.ContentIndexedPoints != 0 }

// HasLines reports whether the payload holds polylines.
func (s *Subdivision) HasLines() bool { return s.Content&parser.ContentLines != 0 }

// HasPolygons reports whether the payload holds polygons.
func (s *Subdivision) HasPolygons() bool { return s.Content&parser.ContentPolygons != 0 }

// Kind selects an extended type table.
type Kind int

const (
	// KindPolygon selects the polygon type table.
	KindPolygon Kind = iota
	// KindPoint selects the point type table.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindPoint:
		return "point"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TypeMap maps an object type code to the minimum level id at which objects
// of that type are drawn.
type TypeMap map[uint16]uint8

// Stats summarizes a decoded archive.
type Stats struct {
	Levels         int
	Subdivisions   int
	Indexed        int // Subdivisions present in a level index
	PolygonTypes   int
	PointTypes     int
	SkippedEntries int // Extended type entries that could not be decoded
	BlockHits      int
	BlockMisses    int
}

// Archive is a decoded TRE subfile with a spatial index per detail level.
//
// Decoding happens once in Init (or Open). After a successful Init the archive
// is immutable: Bounds, Subdivisions and the other accessors may be called
// concurrently without locking. Clear and Close require exclusive access; the
// caller must not run them concurrently with queries.
type Archive struct {
	src    io.ReaderAt
	size   int64
	opts   OpenOptions
	log    *Logger
	closer io.Closer

	initialized bool
	closed      bool
	err         error

	bounds   Rect
	levels   []Level
	order    []int // level slots coarse to fine
	subdivs  []Subdivision
	indexes  []*levelIndex
	polygons TypeMap
	points   TypeMap
	stats    Stats
}

// New returns an archive over the first size bytes of src. Nothing is read
// until Init.
func New(src io.ReaderAt, size int64, opts OpenOptions) *Archive {
	return &Archive{src: src, size: size, opts: opts, log: opts.logger()}
}

// Open decodes the archive held in the first size bytes of src with default
// options.
//
// Example:
//
//	f, _ := os.Open("00000001.TRE")
//	fi, _ := f.Stat()
//	archive, err := img.Open(f, fi.Size())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, sd := range archive.Subdivisions(viewport, 22) {
//	    render(sd)
//	}
func Open(src io.ReaderAt, size int64) (*Archive, error) {
	return OpenWithOptions(src, size, DefaultOpenOptions())
}

// OpenWithOptions decodes the archive with custom options.
func OpenWithOptions(src io.ReaderAt, size int64, opts OpenOptions) (*Archive, error) {
	a := New(src, size, opts)
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile decodes a TRE subfile stored as a standalone file. The archive
// owns the file and closes it in Close.
func OpenFile(path string, opts OpenOptions) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	a := New(f, fi.Size(), opts)
	a.closer = f
	if err := a.Init(); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

// Init decodes the level, subdivision and extended type tables and builds the
// per-level indexes. It runs once: later calls return the first result
// without reading the source again. A failed Init leaves the archive empty.
func (a *Archive) Init() error {
	if a.closed {
		return ErrClosed
	}
	if a.initialized {
		return a.err
	}
	a.initialized = true

	tables, err := parser.Decode(a.src, a.size, a.opts.decodeOptions())
	if err != nil {
		a.err = fmt.Errorf("decode archive: %w", err)
		a.log.LogOpen(a.size, Stats{}, a.err)
		return a.err
	}

	a.load(tables)
	a.log.LogSkippedEntries(KindPolygon.String(), tables.Polygons.Skipped)
	a.log.LogSkippedEntries(KindPoint.String(), tables.Points.Skipped)
	a.log.LogOpen(a.size, a.stats, nil)
	return nil
}

// load converts fully validated tables and builds one index per level.
func (a *Archive) load(t *parser.Tables) {
	a.bounds = fromParserRect(t.Header.Bounds)

	a.levels = make([]Level, len(t.Levels))
	for i, l := range t.Levels {
		a.levels[i] = Level{ID: l.ID, Bits: l.Bits, Subdivisions: l.Subdivs}
	}
	a.order = parser.CoarseToFine(t.Levels)

	a.subdivs = make([]Subdivision, len(t.Subdivisions))
	for i, s := range t.Subdivisions {
		a.subdivs[i] = Subdivision{
			Index:       s.Index,
			Level:       s.Level,
			Bounds:      fromParserRect(s.Bounds),
			Offset:      s.Offset,
			Size:        s.Size,
			Content:     s.Content,
			HasChildren: s.HasChildren,
			LastInLevel: s.LastInLevel,
			FirstChild:  s.FirstChild,
		}
	}

	indexed := 0
	a.indexes = make([]*levelIndex, len(t.Levels))
	for i := range t.Levels {
		start, end := t.LevelRange(i)
		a.indexes[i] = buildLevelIndex(a.subdivs, start, end)
		indexed += a.indexes[i].indexed
	}

	a.polygons = TypeMap(t.Polygons.Types)
	a.points = TypeMap(t.Points.Types)

	a.stats = Stats{
		Levels:         len(a.levels),
		Subdivisions:   len(a.subdivs),
		Indexed:        indexed,
		PolygonTypes:   len(a.polygons),
		PointTypes:     len(a.points),
		SkippedEntries: t.Polygons.SkippedEntries() + t.Points.SkippedEntries(),
		BlockHits:      t.Blocks.Hits,
		BlockMisses:    t.Blocks.Misses,
	}
}

// Clear releases all decoded tables and indexes. The archive must be
// initialized again before it answers queries.
func (a *Archive) Clear() {
	a.initialized = false
	a.err = nil
	a.bounds = Rect{}
	a.levels = nil
	a.order = nil
	a.subdivs = nil
	a.indexes = nil
	a.polygons = nil
	a.points = nil
	a.stats = Stats{}
}

// Close releases all decoded state and closes the source if the archive
// owns it. A closed archive cannot be initialized again.
func (a *Archive) Close() error {
	a.Clear()
	a.closed = true
	if a.closer != nil {
		c := a.closer
		a.closer = nil
		return c.Close()
	}
	return nil
}

// ready reports whether the archive holds decoded tables.
func (a *Archive) ready() bool {
	return a.initialized && a.err == nil
}

// Bounds returns the global extent of the archive. It is the zero Rect
// unless the archive is initialized.
func (a *Archive) Bounds() Rect {
	return a.bounds
}

// Levels returns the decoded levels in declared order.
func (a *Archive) Levels() []Level {
	return append([]Level(nil), a.levels...)
}

// SubdivisionCount returns the number of decoded subdivisions.
func (a *Archive) SubdivisionCount() int {
	return len(a.subdivs)
}

// Subdivision returns the subdivision at table position i.
func (a *Archive) Subdivision(i int) (*Subdivision, bool) {
	if i < 0 || i >= len(a.subdivs) {
		return nil, false
	}
	return &a.subdivs[i], true
}

// LevelSubdivisions returns every subdivision of the level at declared
// position slot, in table order.
func (a *Archive) LevelSubdivisions(slot int) []*Subdivision {
	if !a.ready() || slot < 0 || slot >= len(a.levels) {
		return nil
	}
	var out []*Subdivision
	for i := range a.subdivs {
		if a.subdivs[i].Level == slot {
			out = append(out, &a.subdivs[i])
		}
	}
	return out
}

// Subdivisions returns every subdivision a renderer must load to draw rect
// at resolution bits.
//
// Levels are visited from coarse to fine and included while their bits do
// not exceed the requested bits; finer levels are excluded. Within each
// level the subdivisions intersecting rect, edges included, are returned in
// table order, and levels are concatenated coarse first. An empty rect or an
// archive that is not initialized yields nil. When bounds are validated a
// rect outside the archive bounds yields nil without searching; otherwise
// subdivisions reaching past the bounds are still found.
func (a *Archive) Subdivisions(rect Rect, bits uint8) []*Subdivision {
	if !a.ready() {
		return nil
	}
	if a.opts.ValidateBounds && !rect.Intersects(a.bounds) {
		return nil
	}
	query, ok := toRtreeRect(rect)
	if !ok {
		return nil
	}

	var (
		hits   []int
		levels int
	)
	for _, slot := range a.order {
		if a.levels[slot].Bits > bits {
			break
		}
		hits = a.indexes[slot].search(query, hits)
		levels++
	}

	var out []*Subdivision
	for _, i := range hits {
		sd := &a.subdivs[i]
		if sd.Bounds.Intersects(rect) {
			out = append(out, sd)
		}
	}
	a.log.LogQuery(rect, bits, levels, len(out))
	return out
}

// Types returns the type-to-level map of the given kind. The map is shared
// and must not be modified.
func (a *Archive) Types(kind Kind) TypeMap {
	switch kind {
	case KindPolygon:
		return a.polygons
	case KindPoint:
		return a.points
	default:
		return nil
	}
}

// PolygonTypes returns the polygon type-to-level map.
func (a *Archive) PolygonTypes() TypeMap { return a.polygons }

// PointTypes returns the point type-to-level map.
func (a *Archive) PointTypes() TypeMap { return a.points }

// Visible reports whether objects of type code should be drawn at
// resolution bits.
//
// A type without an entry is always visible. Otherwise the type is visible
// when the level whose id equals the type's minimum level is included at
// bits, that is, when that level's bits do not exceed the requested bits.
// An entry naming an unknown level id does not hide the type.
func (a *Archive) Visible(kind Kind, code uint16, bits uint8) bool {
	minLevel, ok := a.Types(kind)[code]
	if !ok {
		return true
	}
	for _, l := range a.levels {
		if l.ID == minLevel {
			return l.Bits <= bits
		}
	}
	return true
}

// Stats returns decode statistics.
func (a *Archive) Stats() Stats {
	return a.stats
}
