package parser

import "math"

// Rect is an axis-aligned box in 24-bit map units (2^24 units = 360°).
// Min values are inclusive south-west, max values north-east.
type Rect struct {
	MinLon, MinLat int32
	MaxLon, MaxLat int32
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.MinLon >= r.MinLon && o.MaxLon <= r.MaxLon &&
		o.MinLat >= r.MinLat && o.MaxLat <= r.MaxLat
}

func centered(lon, lat int32, halfW, halfH int64) Rect {
	return Rect{
		MinLon: clamp32(int64(lon) - halfW),
		MinLat: clamp32(int64(lat) - halfH),
		MaxLon: clamp32(int64(lon) + halfW),
		MaxLat: clamp32(int64(lat) + halfH),
	}
}

func clamp32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
