package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/img/pkg/img"
)

func main() {
	// Open a TRE subfile extracted from a map set
	archive, err := img.OpenFile("00000001.TRE", img.DefaultOpenOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	// Print archive info
	bounds := archive.Bounds().Bound()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.Min.Lon(), bounds.Min.Lat(),
		bounds.Max.Lon(), bounds.Max.Lat())

	for _, level := range archive.Levels() {
		fmt.Printf("Level %d: %d bits, %d subdivisions\n",
			level.ID, level.Bits, level.Subdivisions)
	}

	st := archive.Stats()
	fmt.Printf("Polygon types: %d, point types: %d\n", st.PolygonTypes, st.PointTypes)
}
