package img

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// levelIndex is the R-tree of one detail level. It stores handles into the
// archive's subdivision table, never copies of the records.
type levelIndex struct {
	rtree   *rtreego.Rtree
	indexed int
}

// subdivHandle wraps a subdivision table index for R-tree storage.
type subdivHandle struct {
	index int
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface.
func (h subdivHandle) Bounds() rtreego.Rect { return h.rect }

// toRtreeRect converts a query rectangle for R-tree use. Empty rectangles
// have no R-tree form because rtreego requires positive lengths.
func toRtreeRect(r Rect) (rtreego.Rect, bool) {
	if r.Empty() {
		return rtreego.Rect{}, false
	}
	point := rtreego.Point{float64(r.MinLon), float64(r.MinLat)}
	lengths := []float64{
		float64(r.MaxLon) - float64(r.MinLon),
		float64(r.MaxLat) - float64(r.MinLat),
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// subdivRtreeRect converts subdivision bounds for insertion. rtreego only
// reports strictly overlapping boxes, so the bounds grow by half a map unit on
// every side: for integer coordinates a strict overlap with the grown box is
// the same as a closed overlap with the stored one, and zero-width
// subdivisions get a positive length.
func subdivRtreeRect(r Rect) rtreego.Rect {
	point := rtreego.Point{float64(r.MinLon) - 0.5, float64(r.MinLat) - 0.5}
	lengths := []float64{
		float64(r.MaxLon) - float64(r.MinLon) + 1,
		float64(r.MaxLat) - float64(r.MinLat) + 1,
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// buildLevelIndex indexes table[start:end].
func buildLevelIndex(table []Subdivision, start, end int) *levelIndex {
	// Create R-tree (2D, min=25 children, max=50 children)
	idx := &levelIndex{rtree: rtreego.NewTree(2, 25, 50)}
	for i := start; i < end; i++ {
		idx.rtree.Insert(subdivHandle{index: i, rect: subdivRtreeRect(table[i].Bounds)})
		idx.indexed++
	}
	return idx
}

// search appends the table indexes of every indexed subdivision overlapping
// query, in table order.
func (idx *levelIndex) search(query rtreego.Rect, dst []int) []int {
	start := len(dst)
	for _, spatial := range idx.rtree.SearchIntersect(query) {
		dst = append(dst, spatial.(subdivHandle).index)
	}
	found := dst[start:]
	sort.Ints(found)
	return dst
}
