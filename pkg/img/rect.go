package img

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/img/internal/parser"
)

// unitsPerDegree converts between 24-bit map units and WGS-84 degrees.
// The full circle is 2^24 units.
const unitsPerDegree = float64(1<<24) / 360.0

// Rect is an axis-aligned bounding box in 24-bit map units.
//
// Map units are the fixed-point coordinates stored in the archive: 2^24 units
// span 360 degrees of longitude. Min values are the south-west corner, max
// values the north-east corner. A Rect is a plain value and never changes
// once constructed.
type Rect struct {
	MinLon int32 // Western edge
	MinLat int32 // Southern edge
	MaxLon int32 // Eastern edge
	MaxLat int32 // Northern edge
}

// NewRect returns the rectangle spanning the two corners in either order.
func NewRect(lon1, lat1, lon2, lat2 int32) Rect {
	return Rect{
		MinLon: min(lon1, lon2),
		MinLat: min(lat1, lat2),
		MaxLon: max(lon1, lon2),
		MaxLat: max(lat1, lat2),
	}
}

// Empty reports whether the rectangle has no area. Queries with an empty
// rectangle return nothing.
func (r Rect) Empty() bool {
	return r.MinLon >= r.MaxLon || r.MinLat >= r.MaxLat
}

// Intersects reports whether r and o share at least one point. Edges are
// closed: rectangles that touch along an edge or at a corner intersect, and a
// zero-width rectangle intersects any rectangle it lies on.
func (r Rect) Intersects(o Rect) bool {
	return r.MinLon <= o.MaxLon && o.MinLon <= r.MaxLon &&
		r.MinLat <= o.MaxLat && o.MinLat <= r.MaxLat
}

// Contains returns true if o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.MinLon >= r.MinLon && o.MaxLon <= r.MaxLon &&
		o.MinLat >= r.MinLat && o.MaxLat <= r.MaxLat
}

// Bound converts the rectangle to WGS-84 degrees.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{ToDegrees(r.MinLon), ToDegrees(r.MinLat)},
		Max: orb.Point{ToDegrees(r.MaxLon), ToDegrees(r.MaxLat)},
	}
}

// RectFromBound converts a WGS-84 bound to map units, rounding each edge to
// the nearest unit.
func RectFromBound(b orb.Bound) Rect {
	return NewRect(FromDegrees(b.Min.Lon()), FromDegrees(b.Min.Lat()),
		FromDegrees(b.Max.Lon()), FromDegrees(b.Max.Lat()))
}

// ToDegrees converts a map unit coordinate to degrees.
func ToDegrees(v int32) float64 {
	return float64(v) / unitsPerDegree
}

// FromDegrees converts degrees to the nearest map unit coordinate.
func FromDegrees(deg float64) int32 {
	return int32(math.Round(deg * unitsPerDegree))
}

func (r Rect) String() string {
	return fmt.Sprintf("[(%d,%d),(%d,%d)]", r.MinLon, r.MinLat, r.MaxLon, r.MaxLat)
}

func fromParserRect(r parser.Rect) Rect {
	return Rect{MinLon: r.MinLon, MinLat: r.MinLat, MaxLon: r.MaxLon, MaxLat: r.MaxLat}
}
