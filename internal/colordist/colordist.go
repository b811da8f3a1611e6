package colordist

import "math"

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Distance returns the redmean-weighted Euclidean distance between two
// colors. The red and blue weights shift with the mean red value, which
// tracks human color-difference perception much closer than a plain
// Euclidean distance over RGB.
func Distance(a, b RGB) float64 {
	rmean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)

	wr := 2 + rmean/256
	wb := 2 + (255-rmean)/256
	return math.Sqrt(wr*dr*dr + 4*dg*dg + wb*db*db)
}
