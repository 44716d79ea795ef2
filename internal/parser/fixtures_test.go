package parser

import (
	"bytes"
	"testing"

	"github.com/beetlebugorg/img/internal/imgtest"
)

// Test world: 2^15 map units square around the origin.
const worldHalf = 1 << 14

func world() imgtest.Archive {
	return imgtest.Box(-worldHalf, -worldHalf, worldHalf, worldHalf)
}

// layered returns an archive with one world-sized subdivision per level.
func layered(levels ...imgtest.Level) imgtest.Archive {
	a := world()
	a.Levels = levels
	for _, l := range levels {
		a.Subdivs = append(a.Subdivs, []imgtest.Subdiv{
			imgtest.SubdivBox(l.Bits, -worldHalf, -worldHalf, worldHalf, worldHalf),
		})
		if l.Last {
			break
		}
	}
	return a
}

func decode(t *testing.T, a imgtest.Archive) (*Tables, error) {
	t.Helper()
	return decodeBytes(a.Bytes(), DefaultDecodeOptions())
}

func decodeBytes(data []byte, opts DecodeOptions) (*Tables, error) {
	return Decode(bytes.NewReader(data), int64(len(data)), opts)
}
