package img

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/img/internal/imgtest"
)

// Test world: 2^15 map units square around the origin.
const half = 1 << 14

// gridLevels describes a three level pyramid: 1x1 at 16 bits, 2x2 at 20
// bits and 4x4 at 24 bits, declared coarse first.
var gridLevels = []struct {
	id, bits uint8
	n        int
}{
	{2, 16, 1},
	{1, 20, 2},
	{0, 24, 4},
}

// gridArchive returns the pyramid; reverse declares the levels fine first.
func gridArchive(reverse bool) imgtest.Archive {
	a := imgtest.Box(-half, -half, half, half)
	order := []int{0, 1, 2}
	if reverse {
		order = []int{2, 1, 0}
	}
	for _, k := range order {
		gl := gridLevels[k]
		a.Levels = append(a.Levels, imgtest.Level{ID: gl.id, Bits: gl.bits})
		span := int32(2 * half / gl.n)
		var cells []imgtest.Subdiv
		for row := 0; row < gl.n; row++ {
			for col := 0; col < gl.n; col++ {
				minLon := -half + int32(col)*span
				minLat := -half + int32(row)*span
				cell := imgtest.SubdivBox(gl.bits, minLon, minLat, minLon+span, minLat+span)
				cell.HasChildren = k < 2
				cells = append(cells, cell)
			}
		}
		cells[len(cells)-1].LastInLevel = true
		a.Subdivs = append(a.Subdivs, cells)
	}
	return a
}

func openArchive(t testing.TB, a imgtest.Archive) *Archive {
	t.Helper()
	data := a.Bytes()
	archive, err := Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return archive
}

// countingReader counts ReadAt calls against the wrapped source.
type countingReader struct {
	r     *bytes.Reader
	reads int
}

func (c *countingReader) ReadAt(p []byte, off int64) (int, error) {
	c.reads++
	return c.r.ReadAt(p, off)
}
