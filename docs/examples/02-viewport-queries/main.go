package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/img/pkg/img"
)

func main() {
	archive, err := img.OpenFile("00000001.TRE", img.DefaultOpenOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	// Define viewport in degrees (Boston Harbor area)
	viewport := img.RectFromBound(orb.Bound{
		Min: orb.Point{-71.1, 42.3},
		Max: orb.Point{-71.0, 42.4},
	})

	// Zooming in raises the resolution and pulls in finer levels
	for _, bits := range []uint8{16, 20, 24} {
		subdivs := archive.Subdivisions(viewport, bits)
		fmt.Printf("%d bits: %d subdivisions\n", bits, len(subdivs))

		for _, sd := range subdivs {
			fmt.Printf("  #%d level %d payload %d+%d polygons=%v\n",
				sd.Index, sd.Level, sd.Offset, sd.Size, sd.HasPolygons())
		}
	}

	// Skip polygon types that are not drawn at this zoom
	fmt.Println("Forest visible at 18 bits:", archive.Visible(img.KindPolygon, 0x50, 18))
}
