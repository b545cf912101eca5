package shadow

import "image/color"

// Bucket is a discrete display classification of a shadow intensity. The
// fixed thresholds give users a coarse but stable read instead of flicker
// from continuous values.
type Bucket struct {
	Level   int // 0 = clear, 5 = deepest shade
	Color   color.RGBA
	Opacity float64
}

// One uniform yellow-to-violet ramp. Opacity decreases monotonically as
// intensity rises.
var buckets = [6]Bucket{
	{0, color.RGBA{0, 0, 0, 0}, 1.00},        // clear, no overlay
	{1, color.RGBA{246, 213, 92, 255}, 0.85}, // ≤20%
	{2, color.RGBA{235, 151, 78, 255}, 0.70}, // ≤40%
	{3, color.RGBA{201, 93, 99, 255}, 0.55},  // ≤60%
	{4, color.RGBA{130, 66, 124, 255}, 0.40}, // ≤80%
	{5, color.RGBA{63, 41, 102, 255}, 0.25},  // >80%
}

// Classify maps an intensity in [0, 1] to its display bucket.
func Classify(intensity float64) Bucket {
	switch {
	case intensity <= 0:
		return buckets[0]
	case intensity <= 0.2:
		return buckets[1]
	case intensity <= 0.4:
		return buckets[2]
	case intensity <= 0.6:
		return buckets[3]
	case intensity <= 0.8:
		return buckets[4]
	default:
		return buckets[5]
	}
}
