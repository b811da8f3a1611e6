package scan

import (
	"github.com/pixelscan/pixelscan/internal/capture"
	"github.com/pixelscan/pixelscan/internal/colordist"
)

// Match is a pixel coordinate relative to the scanned region's top-left.
type Match struct {
	X, Y int
}

// Scanner checks pixels against a target palette with a shared tolerance.
type Scanner struct {
	palette   []colordist.RGB
	tolerance float64
}

// New builds a scanner over the given palette. Palette order is preserved:
// for each pixel, entries are tried in order and the first within tolerance
// wins.
func New(palette []colordist.RGB, tolerance float64) *Scanner {
	p := make([]colordist.RGB, len(palette))
	copy(p, palette)
	return &Scanner{palette: p, tolerance: tolerance}
}

// Scan walks the BGRA view in row-major order (top row first, left to right)
// and returns the first pixel whose distance to any palette entry is within
// tolerance. Ties between equally qualifying pixels are broken by scan
// order, not by distance.
func (s *Scanner) Scan(view capture.PixelView) (Match, bool) {
	for y := 0; y < view.Height; y++ {
		row := view.Pix[y*view.Stride:]
		for x := 0; x < view.Width; x++ {
			i := x * 4
			px := colordist.RGB{R: row[i+2], G: row[i+1], B: row[i]}
			for _, target := range s.palette {
				if colordist.Distance(px, target) <= s.tolerance {
					return Match{X: x, Y: y}, true
				}
			}
		}
	}
	return Match{}, false
}
