package colordist

import (
	"math"
	"testing"
)

func TestDistanceIdentityIsZero(t *testing.T) {
	colors := []RGB{
		{0, 0, 0},
		{255, 255, 255},
		{234, 35, 1},
		{227, 69, 53},
		{17, 200, 96},
	}
	for _, c := range colors {
		if d := Distance(c, c); d != 0 {
			t.Fatalf("Distance(%v, %v) = %v, want 0", c, c, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]RGB{
		{{234, 35, 1}, {227, 69, 53}},
		{{0, 0, 0}, {255, 255, 255}},
		{{10, 20, 30}, {30, 20, 10}},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1])
		ba := Distance(p[1], p[0])
		if math.Abs(ab-ba) > 1e-12 {
			t.Fatalf("Distance(%v, %v) = %v but Distance(%v, %v) = %v",
				p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

// Growing any single channel difference while holding the others fixed must
// never shrink the distance.
func TestDistanceMonotonicPerChannel(t *testing.T) {
	base := RGB{120, 120, 120}

	prev := 0.0
	for d := uint8(0); d < 100; d += 5 {
		got := Distance(base, RGB{120 + d, 120, 120})
		if got < prev {
			t.Fatalf("red delta %d: distance %v < previous %v", d, got, prev)
		}
		prev = got
	}

	prev = 0.0
	for d := uint8(0); d < 100; d += 5 {
		got := Distance(base, RGB{120, 120 + d, 120})
		if got < prev {
			t.Fatalf("green delta %d: distance %v < previous %v", d, got, prev)
		}
		prev = got
	}

	prev = 0.0
	for d := uint8(0); d < 100; d += 5 {
		got := Distance(base, RGB{120, 120, 120 + d})
		if got < prev {
			t.Fatalf("blue delta %d: distance %v < previous %v", d, got, prev)
		}
		prev = got
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Pure green delta: weights are exactly 4, so distance = 2*|dg|.
	got := Distance(RGB{0, 10, 0}, RGB{0, 0, 0})
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("pure green delta 10: got %v, want 20", got)
	}

	// Black vs white, all weights engaged:
	// rmean=127.5, wr=2.498..., wg=4, wb=2.498..., d = 255*sqrt(wr+4+wb)
	want := 255 * math.Sqrt((2+127.5/256)+4+(2+(255-127.5)/256))
	got = Distance(RGB{0, 0, 0}, RGB{255, 255, 255})
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("black vs white: got %v, want %v", got, want)
	}
}
