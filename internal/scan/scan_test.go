package scan

import (
	"testing"

	"github.com/pixelscan/pixelscan/internal/capture"
	"github.com/pixelscan/pixelscan/internal/colordist"
)

// view builds a BGRA PixelView with optional per-row padding.
func view(w, h, pad int) capture.PixelView {
	stride := w*4 + pad
	return capture.PixelView{
		Pix:    make([]byte, h*stride),
		Stride: stride,
		Width:  w,
		Height: h,
	}
}

func setPixel(v capture.PixelView, x, y int, c colordist.RGB) {
	i := y*v.Stride + x*4
	v.Pix[i] = c.B
	v.Pix[i+1] = c.G
	v.Pix[i+2] = c.R
	v.Pix[i+3] = 0xFF
}

func TestScanNoMatch(t *testing.T) {
	s := New([]colordist.RGB{{R: 227, G: 69, B: 53}}, 15)
	v := view(40, 40, 0) // all black, far outside tolerance

	if m, ok := s.Scan(v); ok {
		t.Fatalf("expected no match, got %+v", m)
	}
}

func TestScanSingleQualifyingPixel(t *testing.T) {
	s := New([]colordist.RGB{{R: 227, G: 69, B: 53}}, 15)
	v := view(40, 40, 0)
	setPixel(v, 12, 8, colordist.RGB{R: 227, G: 69, B: 53})

	m, ok := s.Scan(v)
	if !ok {
		t.Fatal("expected a match")
	}
	if m != (Match{X: 12, Y: 8}) {
		t.Fatalf("got %+v, want {12 8}", m)
	}
}

func TestScanReturnsRowMajorFirst(t *testing.T) {
	s := New([]colordist.RGB{{R: 227, G: 69, B: 53}}, 15)
	v := view(40, 40, 0)
	// Later row, smaller x — must lose to the earlier row.
	setPixel(v, 2, 20, colordist.RGB{R: 227, G: 69, B: 53})
	setPixel(v, 35, 5, colordist.RGB{R: 227, G: 69, B: 53})
	// Same row, larger x — must lose to the smaller x.
	setPixel(v, 36, 5, colordist.RGB{R: 227, G: 69, B: 53})

	m, ok := s.Scan(v)
	if !ok {
		t.Fatal("expected a match")
	}
	if m != (Match{X: 35, Y: 5}) {
		t.Fatalf("got %+v, want {35 5}", m)
	}
}

func TestScanToleranceBoundaryIsInclusive(t *testing.T) {
	// Pure green delta of 5 gives distance exactly 10.
	target := colordist.RGB{R: 100, G: 100, B: 100}
	near := colordist.RGB{R: 100, G: 105, B: 100}
	if d := colordist.Distance(target, near); d != 10 {
		t.Fatalf("fixture distance = %v, want 10", d)
	}

	v := view(4, 4, 0)
	setPixel(v, 1, 1, near)

	if _, ok := New([]colordist.RGB{target}, 10).Scan(v); !ok {
		t.Fatal("distance equal to tolerance should match")
	}
	if _, ok := New([]colordist.RGB{target}, 9.99).Scan(v); ok {
		t.Fatal("distance above tolerance should not match")
	}
}

func TestScanIgnoresRowPadding(t *testing.T) {
	s := New([]colordist.RGB{{R: 255, G: 255, B: 255}}, 1)
	v := view(3, 3, 8)
	// Poison the padding with the target color; the scanner must not see it.
	for y := 0; y < 3; y++ {
		for p := 3 * 4; p < v.Stride; p++ {
			v.Pix[y*v.Stride+p] = 0xFF
		}
	}

	if m, ok := s.Scan(v); ok {
		t.Fatalf("match found in row padding: %+v", m)
	}
}

func TestScanPaletteOrderPerPixel(t *testing.T) {
	// A pixel within tolerance of both entries matches; which entry won is
	// invisible in the result, but the scan must still stop at that pixel.
	px := colordist.RGB{R: 200, G: 50, B: 50}
	s := New([]colordist.RGB{{R: 201, G: 50, B: 50}, {R: 200, G: 51, B: 50}}, 20)
	v := view(5, 5, 0)
	setPixel(v, 4, 0, px)
	setPixel(v, 0, 3, px)

	m, ok := s.Scan(v)
	if !ok {
		t.Fatal("expected a match")
	}
	if m != (Match{X: 4, Y: 0}) {
		t.Fatalf("got %+v, want {4 0}", m)
	}
}
