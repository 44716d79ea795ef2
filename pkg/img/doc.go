// Package img decodes the TRE subfile of a Garmin IMG map archive and answers
// resolution-aware viewport queries over its subdivisions.
//
// A TRE subfile describes how a map is cut up. It declares a small number of
// detail levels, each with a coordinate resolution in bits, and partitions
// every level into rectangular subdivisions. A subdivision carries its
// bounding box and the offset of its drawable payload in the sibling RGN
// subfile. This package decodes those tables; it does not decode the payloads.
//
// # Basic Usage
//
//	archive, err := img.OpenFile("00000001.TRE", img.DefaultOpenOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer archive.Close()
//
//	fmt.Printf("Archive covers %v with %d levels\n", archive.Bounds(), len(archive.Levels()))
//
// # Viewport Queries
//
// Subdivisions returns what a renderer must load to draw a rectangle at a
// given resolution. Every level whose resolution does not exceed the request
// contributes the subdivisions that overlap the rectangle, coarse levels
// first:
//
//	viewport := img.RectFromBound(orb.Bound{
//	    Min: orb.Point{-71.1, 42.3},
//	    Max: orb.Point{-71.0, 42.4},
//	})
//	for _, sd := range archive.Subdivisions(viewport, 22) {
//	    // sd.Offset and sd.Size locate the payload in the RGN subfile
//	}
//
// Coordinates are 24-bit map units where 2^24 units span 360 degrees. Use
// Rect.Bound, RectFromBound, ToDegrees and FromDegrees to convert.
//
// # Type Visibility
//
// Archives may carry polygon and point tables naming the coarsest level at
// which each object type is drawn:
//
//	if archive.Visible(img.KindPolygon, code, bits) {
//	    // draw it
//	}
//
// # Errors
//
// Structural failures are reported as *DecodeError values wrapping one of the
// sentinel errors, so both errors.Is and errors.As work:
//
//	var de *img.DecodeError
//	if errors.As(err, &de) {
//	    log.Printf("bad %s table at 0x%X", de.Section, de.Offset)
//	}
//
// # Concurrency
//
// An initialized Archive is read-only; queries may run from any number of
// goroutines. Clear and Close must not overlap with queries.
package img
